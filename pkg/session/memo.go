// Package session keeps the last upload of each browser session and
// memoizes the report built from it.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/report"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultMemoSize is how many reports are kept when no size is configured.
const DefaultMemoSize = 16

type loadFunc func(ctx context.Context, src report.Source, opts extract.Options, ref model.Date) (*report.Report, error)

// Memo caches reports by the content of their input and the reference day,
// so re-rendering a session without a new upload does not re-parse the
// workbook. Concurrent requests for the same key share one load; failed
// loads are not cached.
type Memo struct {
	cache *lru.Cache[string, *report.Report]
	group singleflight.Group
	load  loadFunc
}

// NewMemo returns a memo holding at most size reports.
func NewMemo(size int) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	cache, err := lru.New[string, *report.Report](size)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}
	return &Memo{cache: cache, load: report.Load}, nil
}

// Digest identifies an input by content.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func memoKey(u Upload, opts extract.Options, ref model.Date) string {
	return fmt.Sprintf("%s|%s|%s|%d", u.Digest, ref, opts.Sheet, opts.HeaderRow)
}

// Report returns the report for u as of ref, building it on first use.
func (m *Memo) Report(ctx context.Context, u Upload, opts extract.Options, ref model.Date) (*report.Report, error) {
	key := memoKey(u, opts, ref)
	if r, ok := m.cache.Get(key); ok {
		return r, nil
	}

	v, err, shared := m.group.Do(key, func() (any, error) {
		if r, ok := m.cache.Get(key); ok {
			return r, nil
		}
		// Shared by every waiter on key, so it ignores the caller's cancellation.
		r, err := m.load(context.WithoutCancel(ctx), report.BytesSource{Filename: u.Filename, Data: u.Data}, opts, ref)
		if err != nil {
			return nil, err
		}
		m.cache.Add(key, r)
		zap.S().Debugf("built report for %s (%d records)", u.Filename, len(r.Records))
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		zap.S().Debugf("shared report load for %s", u.Filename)
	}
	return v.(*report.Report), nil
}

// Len is the number of cached reports.
func (m *Memo) Len() int {
	return m.cache.Len()
}
