package service

import (
	"errors"
	"sort"
	"sync"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
)

var (
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrReportUnavailable = errors.New("evaluation report unavailable")
	ErrIndexNotReady     = errors.New("identity index not loaded")
)

type IndexStats struct {
	RunID      string `json:"run_id"`
	Identities int    `json:"identities"`
	Names      int    `json:"names"`
	Emails     int    `json:"emails"`
}

type IdentityLookup interface {
	LookupByEmail(email string) ([]*entity.Identity, error)
	LookupByName(name string) ([]*entity.Identity, error)
	Get(id int) (*entity.Identity, error)
	Report() (*entity.Report, error)
	Stats() (IndexStats, error)
}

// IdentityIndex serves read-only lookups over the result of one matching run.
// Replace swaps the whole result atomically.
type IdentityIndex struct {
	normalizer normalize.Normalizer

	mu         sync.RWMutex
	runID      string
	identities *entity.Identities
	report     *entity.Report
	byName     map[string][]int
	byEmail    map[string][]int
}

func NewIdentityIndex(normalizer normalize.Normalizer) *IdentityIndex {
	return &IdentityIndex{normalizer: normalizer}
}

func (x *IdentityIndex) Replace(runID string, identities *entity.Identities, report *entity.Report) {
	byName := make(map[string][]int)
	byEmail := make(map[string][]int)
	for _, identity := range identities.All() {
		for name := range identity.Names {
			byName[name] = append(byName[name], identity.ID)
		}
		for email := range identity.Emails {
			byEmail[email] = append(byEmail[email], identity.ID)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.runID = runID
	x.identities = identities
	x.report = report
	x.byName = byName
	x.byEmail = byEmail
}

func (x *IdentityIndex) LookupByEmail(email string) ([]*entity.Identity, error) {
	return x.lookup(x.normalizer.Email(email), func() map[string][]int { return x.byEmail })
}

// LookupByName may return several identities since names are not merged by default.
func (x *IdentityIndex) LookupByName(name string) ([]*entity.Identity, error) {
	return x.lookup(x.normalizer.Name(name), func() map[string][]int { return x.byName })
}

func (x *IdentityIndex) lookup(key string, table func() map[string][]int) ([]*entity.Identity, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.identities == nil {
		return nil, ErrIndexNotReady
	}
	ids := table()[key]
	if len(ids) == 0 {
		return nil, ErrIdentityNotFound
	}

	result := make([]*entity.Identity, 0, len(ids))
	for _, id := range ids {
		if identity, ok := x.identities.Get(id); ok {
			result = append(result, identity)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (x *IdentityIndex) Get(id int) (*entity.Identity, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.identities == nil {
		return nil, ErrIndexNotReady
	}
	identity, ok := x.identities.Get(id)
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

func (x *IdentityIndex) Report() (*entity.Report, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.report == nil {
		return nil, ErrReportUnavailable
	}
	report := *x.report
	return &report, nil
}

func (x *IdentityIndex) Stats() (IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.identities == nil {
		return IndexStats{}, ErrIndexNotReady
	}
	return IndexStats{
		RunID:      x.runID,
		Identities: x.identities.Len(),
		Names:      len(x.byName),
		Emails:     len(x.byEmail),
	}, nil
}
