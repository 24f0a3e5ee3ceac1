package advisor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/advisor/date"
)

// This file contains code to read and write snapshots of asset records.
//
// A snapshot is a JSONL file, one asset per line, so that it stays human-readable and
// git-friendly. An asset line with a "shares" attribute is also a position of the
// portfolio, in file order. Every other asset is a candidate only.

// Snapshot is a set of asset records and the portfolio holding some of them.
type Snapshot struct {
	Assets    []*Asset
	Portfolio Portfolio
}

// Asset returns the asset with that ticker, or nil.
func (s *Snapshot) Asset(ticker string) *Asset {
	for _, a := range s.Assets {
		if a.Ticker == ticker {
			return a
		}
	}
	return nil
}

// Shares returns the number of shares held of each asset, in asset order.
func (s *Snapshot) Shares() []int64 {
	held := make(map[string]int64)
	for _, it := range s.Portfolio {
		held[it.Asset.Ticker] += it.Shares
	}
	shares := make([]int64, len(s.Assets))
	for i, a := range s.Assets {
		shares[i] = held[a.Ticker]
	}
	return shares
}

// jasset is the object read from and written to a snapshot line.
type jasset struct {
	Ticker        string        `json:"ticker"`
	Name          string        `json:"name,omitempty"`
	Price         float64       `json:"price"`
	Shares        *int64        `json:"shares,omitempty"`
	PE            *float64      `json:"pe,omitempty"`
	Beta          *float64      `json:"beta,omitempty"`
	DividendYield *float64      `json:"dividend_yield,omitempty"`
	NetIncome     *float64      `json:"net_income,omitempty"`
	Revenue       *float64      `json:"revenue,omitempty"`
	History       []jprice      `json:"history,omitempty"`
	Dividends     []Dividend    `json:"dividends,omitempty"`
	Holdings      []Constituent `json:"holdings,omitempty"`
}

type jprice struct {
	On    date.Date `json:"on"`
	Close float64   `json:"close"`
}

// maxLineSize bounds a snapshot line, long price histories make long lines.
const maxLineSize = 64 << 20

// DecodeSnapshot reads a JSONL snapshot.
// filename is for error message only.
func DecodeSnapshot(filename string, r io.Reader) (*Snapshot, error) {
	s := new(Snapshot)
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var ja jasset
		if err := json.Unmarshal(line, &ja); err != nil {
			return nil, fmt.Errorf("format error in %s:%d: %w", filename, i, err)
		}
		if seen[ja.Ticker] {
			return nil, fmt.Errorf("format error in %s:%d: ticker %q is already defined", filename, i, ja.Ticker)
		}
		seen[ja.Ticker] = true

		a := &Asset{
			Ticker:        ja.Ticker,
			Name:          ja.Name,
			Price:         ja.Price,
			PE:            ja.PE,
			Beta:          ja.Beta,
			DividendYield: ja.DividendYield,
			NetIncome:     ja.NetIncome,
			Revenue:       ja.Revenue,
			Dividends:     ja.Dividends,
			Holdings:      ja.Holdings,
		}
		for _, p := range ja.History {
			a.Prices.Append(p.On, p.Close)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("format error in %s:%d: %w", filename, i, err)
		}
		s.Assets = append(s.Assets, a)

		if ja.Shares != nil {
			if *ja.Shares < 0 {
				return nil, fmt.Errorf("format error in %s:%d: %w: negative shares %d", filename, i, ErrInvalidInput, *ja.Shares)
			}
			s.Portfolio = append(s.Portfolio, Item{Asset: a, Shares: *ja.Shares})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	return s, nil
}

// EncodeSnapshot writes a snapshot as JSONL, one asset per line in asset order.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	held := make(map[*Asset]int64)
	for _, it := range s.Portfolio {
		held[it.Asset] += it.Shares
	}

	for _, a := range s.Assets {
		ja := jasset{
			Ticker:        a.Ticker,
			Name:          a.Name,
			Price:         a.Price,
			PE:            a.PE,
			Beta:          a.Beta,
			DividendYield: a.DividendYield,
			NetIncome:     a.NetIncome,
			Revenue:       a.Revenue,
			Dividends:     a.Dividends,
			Holdings:      a.Holdings,
		}
		if shares, ok := held[a]; ok {
			ja.Shares = &shares
		}
		for on, p := range a.Prices.Values() {
			ja.History = append(ja.History, jprice{On: on, Close: p})
		}
		line, err := json.Marshal(ja)
		if err != nil {
			return fmt.Errorf("cannot encode %s: %w", a.Ticker, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads the snapshot file.
func LoadSnapshot(filename string) (*Snapshot, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open snapshot %q: %w", filename, err)
	}
	defer f.Close()
	return DecodeSnapshot(filename, f)
}

// SaveSnapshot writes the snapshot file.
func SaveSnapshot(filename string, s *Snapshot) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create snapshot %q: %w", filename, err)
	}
	if err := EncodeSnapshot(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
