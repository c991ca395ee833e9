package journal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/candlewaker/market"
)

// Range is an inclusive window of epoch millis. Zero bounds are open.
type Range struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// RangeFor resolves a named stats window relative to now, in now's location:
// week starts Monday, month and year start on their first day, custom uses
// the from/to days (YYYY-MM-DD). Every window ends at 23:59:59.999 of its
// last day. "all" or "" is unbounded.
func RangeFor(mode string, now time.Time, from, to string) (Range, error) {
	endOfDay := func(t time.Time) int64 {
		return market.StartOfDay(t).AddDate(0, 0, 1).UnixMilli() - 1
	}
	today := market.StartOfDay(now)

	switch mode {
	case "", "all":
		return Range{}, nil
	case "week":
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7
		}
		start := today.AddDate(0, 0, -(wd - 1))
		return Range{From: start.UnixMilli(), To: endOfDay(now)}, nil
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{From: start.UnixMilli(), To: endOfDay(now)}, nil
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{From: start.UnixMilli(), To: endOfDay(now)}, nil
	case "custom":
		f, err := time.ParseInLocation("2006-01-02", from, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: from date: %v", ErrInvalidInput, err)
		}
		t, err := time.ParseInLocation("2006-01-02", to, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: to date: %v", ErrInvalidInput, err)
		}
		if t.Before(f) {
			return Range{}, fmt.Errorf("%w: to date before from date", ErrInvalidInput)
		}
		return Range{From: f.UnixMilli(), To: endOfDay(t)}, nil
	default:
		return Range{}, fmt.Errorf("%w: unknown range %q", ErrInvalidInput, mode)
	}
}

type StrategyStat struct {
	StrategyID string  `json:"strategyId"`
	Name       string  `json:"name"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Total      int     `json:"total"`
	WinRate    float64 `json:"winRate"`
}

// Stats summarizes a set of entries. Only Win and Loss entries count toward
// the win rate, net figures and average risk/reward.
type Stats struct {
	Total         int            `json:"total"`
	Wins          int            `json:"wins"`
	Losses        int            `json:"losses"`
	WinRate       float64        `json:"winRate"` // percent
	NetPoints     float64        `json:"netPoints"`
	NetUSD        float64        `json:"netUsd"`
	AvgRiskReward *float64       `json:"avgRiskReward,omitempty"`
	ByStrategy    []StrategyStat `json:"byStrategy"`
}

const noStrategy = "(no strategy)"

func Summarize(entries []Entry, strategies []Strategy) Stats {
	names := make(map[string]string, len(strategies))
	for _, st := range strategies {
		names[st.ID] = st.Name
	}

	st := Stats{Total: len(entries), ByStrategy: []StrategyStat{}}
	groups := map[string]*StrategyStat{}
	var order []string
	var rrSum float64
	var rrN int

	for _, e := range entries {
		if e.Status != Win && e.Status != Loss {
			continue
		}
		if e.Status == Win {
			st.Wins++
		} else {
			st.Losses++
		}
		st.NetPoints += Points(e)
		if isNum(e.UsdPnL) {
			st.NetUSD += *e.UsdPnL
		}
		if isNum(e.RiskReward) {
			rrSum += *e.RiskReward
			rrN++
		}

		g, ok := groups[e.StrategyID]
		if !ok {
			name := noStrategy
			if e.StrategyID != "" {
				name = e.StrategyID
				if n, ok := names[e.StrategyID]; ok {
					name = n
				}
			}
			g = &StrategyStat{StrategyID: e.StrategyID, Name: name}
			groups[e.StrategyID] = g
			order = append(order, e.StrategyID)
		}
		if e.Status == Win {
			g.Wins++
		} else {
			g.Losses++
		}
		g.Total++
	}

	if n := st.Wins + st.Losses; n > 0 {
		st.WinRate = float64(st.Wins) / float64(n) * 100
	}
	st.NetPoints = Round2(st.NetPoints)
	st.NetUSD = Round2(st.NetUSD)
	if rrN > 0 {
		avg := Round2(rrSum / float64(rrN))
		st.AvgRiskReward = &avg
	}

	for _, k := range order {
		g := groups[k]
		g.WinRate = float64(g.Wins) / float64(g.Total) * 100
		st.ByStrategy = append(st.ByStrategy, *g)
	}
	sort.SliceStable(st.ByStrategy, func(i, j int) bool {
		return st.ByStrategy[i].WinRate > st.ByStrategy[j].WinRate
	})
	return st
}

// Stats loads the entries of an account (all accounts if empty) within r and
// summarizes them.
func (s *Service) Stats(ctx context.Context, accountID string, r Range) (Stats, error) {
	entries, err := s.store.FindEntries(ctx, EntryQuery{AccountID: accountID, From: r.From, To: r.To})
	if err != nil {
		return Stats{}, fmt.Errorf("list entries: %w", err)
	}
	strategies, err := s.store.ListStrategies(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list strategies: %w", err)
	}
	return Summarize(entries, strategies), nil
}
