package ui

import (
	"net/url"
	"strconv"

	"infinite-experiment/skyboard/internal/dashboard"
)

// pager is the footer of the flights table
type pager struct {
	Page     int
	Pages    int
	From     int
	To       int
	Filtered int
	HasPrev  bool
	HasNext  bool
	PrevURL  string
	NextURL  string
}

// newPager returns nil when there is nothing to page through
func newPager(snap dashboard.TableSnapshot) *pager {
	st := snap.State
	if snap.RecordsFiltered <= 0 || st.Length <= 0 {
		return nil
	}

	p := &pager{
		Page:     st.Start/st.Length + 1,
		Pages:    (snap.RecordsFiltered + st.Length - 1) / st.Length,
		From:     st.Start + 1,
		To:       min(st.Start+len(snap.Rows), snap.RecordsFiltered),
		Filtered: snap.RecordsFiltered,
		HasPrev:  st.Start > 0,
		HasNext:  st.Start+st.Length < snap.RecordsFiltered,
	}
	if len(snap.Rows) == 0 {
		p.From = 0
	}
	if p.HasPrev {
		p.PrevURL = tableURL(st, max(st.Start-st.Length, 0))
	}
	if p.HasNext {
		p.NextURL = tableURL(st, st.Start+st.Length)
	}
	return p
}

func tableURL(st dashboard.TableState, start int) string {
	v := url.Values{}
	v.Set("start", strconv.Itoa(start))
	v.Set("length", strconv.Itoa(st.Length))
	v.Set("order", strconv.Itoa(st.OrderColumn))
	v.Set("dir", st.OrderDir)
	v.Set("search", st.Search)
	return "/flights/table?" + v.Encode()
}

// tableStateFrom overlays query parameters on the current state
func tableStateFrom(q url.Values, current dashboard.TableState) dashboard.TableState {
	st := current
	if n, err := strconv.Atoi(q.Get("start")); err == nil {
		st.Start = n
	}
	if n, err := strconv.Atoi(q.Get("length")); err == nil {
		st.Length = n
	}
	if n, err := strconv.Atoi(q.Get("order")); err == nil {
		st.OrderColumn = n
	}
	if q.Has("dir") {
		st.OrderDir = q.Get("dir")
	}
	if q.Has("search") {
		st.Search = q.Get("search")
	}
	return st
}
