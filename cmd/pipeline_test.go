package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/advisor"
	"github.com/etnz/advisor/config"
	"github.com/rs/zerolog"
)

func TestPipelineOptions(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts advisor.Options)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, opts advisor.Options) {
				if opts.Lambda != 1 || opts.LookAhead != advisor.LookAheadSharpe || opts.Projector.Seed != nil {
					t.Errorf("options() = %+v, want the configuration defaults", opts)
				}
			},
		},
		{
			name: "overrides",
			args: []string{"-lambda", "3", "-look-ahead", "utility", "-seed", "0", "-years", "2"},
			check: func(t *testing.T, opts advisor.Options) {
				if opts.Lambda != 3 {
					t.Errorf("options().Lambda = %v, want 3", opts.Lambda)
				}
				if opts.LookAhead != advisor.LookAheadUtility {
					t.Errorf("options().LookAhead = %v, want utility", opts.LookAhead)
				}
				if opts.Projector.Seed == nil || *opts.Projector.Seed != 0 {
					t.Errorf("options().Projector.Seed = %v, want 0", opts.Projector.Seed)
				}
				if opts.HorizonYears != 2 {
					t.Errorf("options().HorizonYears = %v, want 2", opts.HorizonYears)
				}
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p pipelineFlags
			f := flag.NewFlagSet(tc.name, flag.ContinueOnError)
			p.SetFlags(f)
			if err := f.Parse(tc.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			opts, err := p.options(config.Default(), f)
			if err != nil {
				t.Fatalf("options() error = %v", err)
			}
			tc.check(t, opts)
		})
	}
}

func TestPipelineOptionsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-lambda", "-1"},
		{"-look-ahead", "greedy"},
	} {
		var p pipelineFlags
		f := flag.NewFlagSet("test", flag.ContinueOnError)
		p.SetFlags(f)
		if err := f.Parse(args); err != nil {
			t.Fatalf("Parse(%v) error = %v", args, err)
		}
		if _, err := p.options(config.Default(), f); err == nil {
			t.Errorf("options(%v) error = nil, want an error", args)
		}
	}
}

const testSnapshot = `{"ticker":"AAA","price":10,"shares":5}
{"ticker":"BBB","price":20}
{"ticker":"CCC","price":30}
`

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func candidates(req advisor.Request) []string {
	var tickers []string
	for _, a := range req.Candidates {
		tickers = append(tickers, a.Ticker)
	}
	return tickers
}

func TestPipelineRequest(t *testing.T) {
	filename := writeSnapshot(t, "alice.jsonl", testSnapshot)
	ctx := context.Background()

	p := pipelineFlags{budget: 100}
	req, err := p.request(ctx, filename, nil)
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if req.Name != "alice" {
		t.Errorf("request().Name = %q, want %q", req.Name, "alice")
	}
	if got, want := candidates(req), []string{"AAA", "BBB", "CCC"}; !slices.Equal(got, want) {
		t.Errorf("request().Candidates = %v, want %v", got, want)
	}
	if len(req.Portfolio) != 1 || req.Portfolio[0].Shares != 5 || req.Budget != 100 {
		t.Errorf("request() = %+v, want 5 AAA and a budget of 100", req)
	}

	p.candidates = "CCC, AAA"
	req, err = p.request(ctx, filename, nil)
	if err != nil {
		t.Fatalf("request(-candidates) error = %v", err)
	}
	if got, want := candidates(req), []string{"CCC", "AAA"}; !slices.Equal(got, want) {
		t.Errorf("request(-candidates).Candidates = %v, want %v", got, want)
	}

	p.candidates = "ZZZ"
	if _, err := p.request(ctx, filename, nil); err == nil {
		t.Errorf("request(-candidates ZZZ) error = nil, want an error")
	}
}

func TestPipelineRequestProfiles(t *testing.T) {
	filename := writeSnapshot(t, "bob.jsonl", `{"ticker":"AAA","price":10,"shares":1}`+"\n")
	market := writeSnapshot(t, "market.jsonl", testSnapshot)

	p := pipelineFlags{profiles: market, candidates: "BBB,CCC"}
	profiles := p.newProfiles(config.Default(), zerolog.Nop())
	req, err := p.request(context.Background(), filename, profiles)
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if got, want := candidates(req), []string{"BBB", "CCC"}; !slices.Equal(got, want) {
		t.Errorf("request().Candidates = %v, want %v", got, want)
	}
	if profiles.Len() != 2 {
		t.Errorf("profiles.Len() = %d, want 2", profiles.Len())
	}
}
