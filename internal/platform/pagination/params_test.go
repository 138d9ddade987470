package pagination

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, params.PageSize)
	}
	if params.Offset != 0 {
		t.Fatalf("expected zero offset, got %d", params.Offset)
	}
}

func TestParsePageSize(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		opts    Options
		want    int
		wantErr error
	}{
		{name: "explicit", raw: "5", want: 5},
		{name: "clamped to max", raw: "500", want: DefaultMaxPageSize},
		{name: "custom max", raw: "50", opts: Options{MaxPageSize: 10}, want: 10},
		{name: "zero rejected", raw: "0", wantErr: ErrInvalidPageSize},
		{name: "negative rejected", raw: "-3", wantErr: ErrInvalidPageSize},
		{name: "garbage rejected", raw: "ten", wantErr: ErrInvalidPageSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{"pageSize": []string{tc.raw}}
			params, err := Parse(values, tc.opts)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if params.PageSize != tc.want {
				t.Fatalf("expected page size %d, got %d", tc.want, params.PageSize)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token := EncodeToken(40)
	if token == "" {
		t.Fatalf("expected a token for positive offset")
	}

	offset, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offset != 40 {
		t.Fatalf("expected offset 40, got %d", offset)
	}
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"not-base64!", "YWJj", "eyJvZmZzZXQiOi01fQ"} {
		if _, err := DecodeToken(raw); !errors.Is(err, ErrInvalidPageToken) {
			t.Fatalf("expected ErrInvalidPageToken for %q, got %v", raw, err)
		}
	}
}

func TestWindowAndNextToken(t *testing.T) {
	params := Params{PageSize: 2, Offset: 0}

	start, end := params.Window(5)
	if start != 0 || end != 2 {
		t.Fatalf("expected window [0,2), got [%d,%d)", start, end)
	}
	if params.NextToken(5) == "" {
		t.Fatalf("expected a next token for a partial window")
	}

	last := Params{PageSize: 2, Offset: 4}
	start, end = last.Window(5)
	if start != 4 || end != 5 {
		t.Fatalf("expected window [4,5), got [%d,%d)", start, end)
	}
	if last.NextToken(5) != "" {
		t.Fatalf("expected no next token on the final page")
	}

	past := Params{PageSize: 2, Offset: 10}
	start, end = past.Window(5)
	if start != 5 || end != 5 {
		t.Fatalf("expected empty window past the end, got [%d,%d)", start, end)
	}
}
