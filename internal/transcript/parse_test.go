package transcript

import (
	"testing"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.500
welcome to the talk

00:00:02.500 --> 00:00:05.000
today we cover <b>slides</b>
and transcripts

00:00:05.000 --> 00:00:06.000
`

func TestParseVTT(t *testing.T) {
	segments := ParseVTT(sampleVTT)

	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != 2.5 {
		t.Errorf("segment 0 = [%v, %v], want [0, 2.5]", segments[0].Start, segments[0].End)
	}
	if segments[0].Text != "welcome to the talk" {
		t.Errorf("segment 0 text = %q", segments[0].Text)
	}
	// Styling tags stripped, multi-line cue joined.
	if segments[1].Text != "today we cover slides and transcripts" {
		t.Errorf("segment 1 text = %q", segments[1].Text)
	}
}

const sampleSRT = `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
As I'm sure you're all aware

3
00:01:00,500 --> 00:01:02,000
one minute in
`

func TestParseSRT(t *testing.T) {
	segments := ParseSRT(sampleSRT)

	if len(segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(segments))
	}
	if segments[0].Text != "I'm happy to have you here today." {
		t.Errorf("segment 0 text = %q", segments[0].Text)
	}
	if segments[1].Start != 1.91 {
		t.Errorf("segment 1 start = %v, want 1.91", segments[1].Start)
	}
	if segments[2].Start != 60.5 || segments[2].End != 62.0 {
		t.Errorf("segment 2 = [%v, %v], want [60.5, 62.0]", segments[2].Start, segments[2].End)
	}
}

func TestParseEmpty(t *testing.T) {
	if got := ParseVTT(""); len(got) != 0 {
		t.Errorf("ParseVTT(\"\") = %v, want empty", got)
	}
	if got := ParseSRT(""); len(got) != 0 {
		t.Errorf("ParseSRT(\"\") = %v, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	segments := []Segment{
		{Start: 5, End: 6, Text: "second"},
		{Start: 1, End: 2, Text: "first"},
		{Start: 3, End: 3, Text: "inverted"},
		{Start: 4, End: 5, Text: "   "},
	}

	out := Normalize(segments)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Text != "first" || out[1].Text != "second" {
		t.Errorf("Normalize order = %q, %q", out[0].Text, out[1].Text)
	}
}

func TestJoin(t *testing.T) {
	segments := []Segment{
		{Text: "a"},
		{Text: "b"},
		{Text: ""},
		{Text: "c"},
	}
	if got := Join(segments); got != "a b c" {
		t.Errorf("Join() = %q, want %q", got, "a b c")
	}
}
