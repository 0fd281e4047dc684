package spin

import (
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []string{
		"",
		"0",
		"1",
		"01",
		"10",
		"000111000111",
		"1111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111",
	}
	for _, s := range cases {
		s := s
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			c, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", s, err)
			}
			if got := c.String(); got != s {
				t.Fatalf("String() = %q, want %q", got, s)
			}
			if c.Hash() != c.Hash() {
				t.Fatalf("Hash() is not stable")
			}
		})
	}
}

func TestEqualityMatchesBitPatternAndLength(t *testing.T) {
	t.Parallel()
	a, err := Parse("0101")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("0101")
	if err != nil {
		t.Fatal(err)
	}
	c, err := Parse("0100")
	if err != nil {
		t.Fatal(err)
	}
	d, err := Parse("010")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected %v == %v", a, b)
	}
	if a != b {
		t.Fatalf("expected native struct equality to agree with Equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected %v != %v", a, c)
	}
	if a.Equal(d) {
		t.Fatalf("expected different lengths to compare unequal")
	}
}

func TestTooLongConfigurationRejected(t *testing.T) {
	t.Parallel()
	values := make([]int, MaxSites+1)
	if _, err := New(values); err == nil {
		t.Fatalf("expected an error for a configuration longer than %d bits", MaxSites)
	}
}

func TestFlipInvolution(t *testing.T) {
	t.Parallel()
	c, err := Parse("0110100")
	if err != nil {
		t.Fatal(err)
	}
	flipped, err := c.Flip(2)
	if err != nil {
		t.Fatal(err)
	}
	flipped, err = flipped.Flip(5)
	if err != nil {
		t.Fatal(err)
	}
	back, err := flipped.Flip(2)
	if err != nil {
		t.Fatal(err)
	}
	back, err = back.Flip(5)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(c) {
		t.Fatalf("flip(i,j) twice should be an involution: got %v, want %v", back, c)
	}

	changed := 0
	for i := 0; i < c.Len(); i++ {
		ci, _ := c.At(i)
		fi, _ := flipped.At(i)
		if ci != fi {
			changed++
		}
	}
	if changed != 2 {
		t.Fatalf("expected exactly 2 bits to change, got %d", changed)
	}
}

func TestAtOutOfRange(t *testing.T) {
	t.Parallel()
	c, err := Parse("01")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.At(-1); err == nil {
		t.Fatalf("expected an error for a negative index")
	}
	if _, err := c.At(2); err == nil {
		t.Fatalf("expected an error for an out-of-range index")
	}
}

func TestParseRejectsInvalidCharacters(t *testing.T) {
	t.Parallel()
	if _, err := Parse("012"); err == nil {
		t.Fatalf("expected an error for a non-binary character")
	}
}

func TestWordsRoundTrip(t *testing.T) {
	t.Parallel()
	c, err := Parse("0110100111000101")
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := c.Words()
	if got := FromWords(lo, hi); !got.Equal(c) {
		t.Fatalf("FromWords(c.Words()) = %v, want %v", got, c)
	}
}

func TestFirstByteRouting(t *testing.T) {
	t.Parallel()
	c, err := Parse("10000000")
	if err != nil {
		t.Fatal(err)
	}
	if c.FirstByte() != 0x80 {
		t.Fatalf("FirstByte() = %#x, want 0x80", c.FirstByte())
	}
}
