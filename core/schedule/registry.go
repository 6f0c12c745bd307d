// Package schedule - Version registries
package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Version is implemented by every fee table edition
type Version interface {
	VersionID() string
	Period() Validity
	Validate() error
}

// Registry holds the editions of one table family, ordered by start date.
// A registry is immutable after construction and safe for concurrent reads.
type Registry[V Version] struct {
	versions []V
	byID     map[string]V
}

// NewRegistry creates a registry from versions in any order
func NewRegistry[V Version](versions ...V) *Registry[V] {
	sorted := make([]V, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period().From.Before(sorted[j].Period().From)
	})

	byID := make(map[string]V, len(sorted))
	for _, v := range sorted {
		byID[v.VersionID()] = v
	}

	return &Registry[V]{versions: sorted, byID: byID}
}

// Select returns the version valid on date.
// When no interval contains the date the most recent version is returned.
func (r *Registry[V]) Select(date time.Time) V {
	var zero V
	if len(r.versions) == 0 {
		return zero
	}
	for i := len(r.versions) - 1; i >= 0; i-- {
		if r.versions[i].Period().Contains(date) {
			return r.versions[i]
		}
	}
	return r.versions[len(r.versions)-1]
}

// Find returns the first version, by start date, that satisfies match
func (r *Registry[V]) Find(match func(V) bool) (V, bool) {
	for _, v := range r.versions {
		if match(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Get returns a version by id
func (r *Registry[V]) Get(id string) (V, bool) {
	v, ok := r.byID[id]
	return v, ok
}

// All returns every version ordered by start date
func (r *Registry[V]) All() []V {
	out := make([]V, len(r.versions))
	copy(out, r.versions)
	return out
}

// Validate checks every version and returns all failures
func (r *Registry[V]) Validate() []error {
	var errs []error
	seen := make(map[string]bool, len(r.versions))
	for _, v := range r.versions {
		if seen[v.VersionID()] {
			errs = append(errs, fmt.Errorf("duplicate version id %s", v.VersionID()))
		}
		seen[v.VersionID()] = true
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// MustValidate panics if validation fails
func (r *Registry[V]) MustValidate() {
	if errs := r.Validate(); len(errs) > 0 {
		panic(fmt.Sprintf("fee schedule registry has %d validation errors: %v", len(errs), errs))
	}
}

var (
	generalRegistry = sync.OnceValue(func() *Registry[*FeeScheduleVersion] {
		r := NewRegistry(rvg2021(), rvg2025())
		r.MustValidate()
		return r
	})

	courtRegistry = sync.OnceValue(func() *Registry[*CourtFeeScheduleVersion] {
		r := NewRegistry(gkg2021(), gkg2025())
		r.MustValidate()
		return r
	})

	reducedRegistry = sync.OnceValue(func() *Registry[*ReducedFeeScheduleVersion] {
		general, _ := General().Get("rvg-2021")
		r := NewRegistry(pkh2021(general))
		r.MustValidate()
		return r
	})
)

// General returns the process-wide general value-fee tables (§ 13 RVG)
func General() *Registry[*FeeScheduleVersion] { return generalRegistry() }

// Court returns the process-wide court fee tables (§ 34 GKG)
func Court() *Registry[*CourtFeeScheduleVersion] { return courtRegistry() }

// Reduced returns the process-wide legal-aid fee tables (§ 49 RVG)
func Reduced() *Registry[*ReducedFeeScheduleVersion] { return reducedRegistry() }

// ReducedFor returns the legal-aid edition paired with a general edition.
// ok is false when no legal-aid edition exists for that period.
func ReducedFor(general *FeeScheduleVersion) (*ReducedFeeScheduleVersion, bool) {
	return PairedReduced(Reduced(), general)
}

// PairedReduced looks up the edition paired with general in r
func PairedReduced(r *Registry[*ReducedFeeScheduleVersion], general *FeeScheduleVersion) (*ReducedFeeScheduleVersion, bool) {
	if r == nil || general == nil {
		return nil, false
	}
	return r.Find(func(v *ReducedFeeScheduleVersion) bool {
		return v.GeneralID == general.ID
	})
}

// SelectVersion picks the general table edition for a reference date
func SelectVersion(date time.Time) *FeeScheduleVersion {
	return General().Select(date)
}
