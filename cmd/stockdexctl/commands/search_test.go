package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/stockdex"
)

func parseFlags(t *testing.T, args ...string) *intentFlags {
	t.Helper()
	f := &intentFlags{}
	cmd := &cobra.Command{Use: "t"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return f
}

func TestIntentFlags_Defaults(t *testing.T) {
	in, err := parseFlags(t).build(strings.NewReader(""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !in.UploadedOnly || in.Limit != 10 || in.Filters.Price.IsSet() || in.CategoryCode.IsSet() {
		t.Errorf("intent = %+v", in)
	}
}

func TestIntentFlags_Filters(t *testing.T) {
	f := parseFlags(t,
		"-q", "خودکار", "-c", "s,l", "--publisher", "parker", "--publisher", "پارکر",
		"--max-price", "0", "--in-stock", "--all", "--sort", "price", "--dir", "asc", "-n", "3",
	)
	in, err := f.build(strings.NewReader(""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if in.QueryText != "خودکار" || len(in.CategoryCode.Codes()) != 2 {
		t.Errorf("query/category = %q %v", in.QueryText, in.CategoryCode.Codes())
	}
	if len(in.Filters.Publisher.Include) != 2 {
		t.Errorf("publishers = %v", in.Filters.Publisher.Include)
	}
	if in.Filters.Price.Max == nil || *in.Filters.Price.Max != 0 || in.Filters.Price.Min != nil {
		t.Errorf("price = %+v", in.Filters.Price)
	}
	if !in.Filters.Stock.Enabled() || in.UploadedOnly || in.Limit != 3 {
		t.Errorf("intent = %+v", in)
	}
	if in.SortKey() != stockdex.SortPrice || in.SortDirection() != stockdex.Asc {
		t.Errorf("sort = %s %s", in.SortKey(), in.SortDirection())
	}
}

func TestIntentFlags_InvalidSort(t *testing.T) {
	_, err := parseFlags(t, "--sort", "popularity").build(strings.NewReader(""))
	if !errors.Is(err, stockdex.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIntentFlags_FromStdin(t *testing.T) {
	f := parseFlags(t, "-i", "-", "-q", "ignored")
	in, err := f.build(strings.NewReader(`{"query_text": "دفتر", "limit": 4}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if in.QueryText != "دفتر" || in.Limit != 4 {
		t.Errorf("intent = %+v", in)
	}

	_, err = f.build(strings.NewReader(`{"colour": "red"}`))
	if !errors.Is(err, stockdex.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
