/*
availability.go - The availability/conflict engine

PURPOSE:
  Decides whether a requested resource set can be granted for a
  date/time window given finite inventory and the committed bookings
  that overlap the window.

ALGORITHM:
  1. Fetch inventory and the full ledger (both may be stale relative
     to concurrent writers - see the consistency note below).
  2. Accumulate per-resource usage over every ledger record on the
     probe date whose [start, end) window overlaps the probe window
     under half-open semantics.
  3. Walk the requested resources in caller-supplied order:
     an unresolved or zero-stock name rejects immediately; a free
     count below the requested count rejects immediately with the
     window and both counts in the reason. First failure wins.

FIRST-FAILURE-WINS:
  Rejections report only the first shortfall, not an aggregate. The
  conversation surface shows one corrective message at a time; this is
  an accepted policy, not an oversight. Do not upgrade to aggregate
  reporting - it changes externally observable behavior.

CONSISTENCY:
  There is no lock between check and append. Two sessions can both
  pass CheckRequest for the same scarce resource before either
  commits; the workflow's mandatory re-check at confirm time narrows
  that window but does not eliminate it. Stronger guarantees would
  need an external serialization point around the commit step.

SEE ALSO:
  - time.go: Overlaps
  - workflow: calls CheckRequest before confirmation and again at commit
*/
package booking

import (
	"context"

	"github.com/shopspring/decimal"
)

// Engine computes request feasibility against inventory minus
// overlapping committed usage.
type Engine struct {
	Catalog InventoryCatalog
	Ledger  Ledger
}

func NewEngine(catalog InventoryCatalog, ledger Ledger) *Engine {
	return &Engine{Catalog: catalog, Ledger: ledger}
}

// CheckRequest reports whether the requested resources can be granted
// for the window. It returns nil when every resource passes, an
// *AvailabilityError naming the first failing resource otherwise, and a
// *SourceError when inventory or ledger cannot be fetched.
func (e *Engine) CheckRequest(ctx context.Context, date Date, start, end TimeOfDay, requested *ResourceSet) error {
	inv, used, err := e.fetchUsage(ctx, date, start, end)
	if err != nil {
		return err
	}

	for _, entry := range requested.Entries() {
		res, ok := inv.Lookup(entry.Name)
		if !ok || res.Quantity == 0 {
			return &AvailabilityError{
				Kind:     UnknownResource,
				Resource: entry.Name,
				Date:     date,
				Start:    start,
				End:      end,
			}
		}

		free := res.Quantity - used[NormalizeName(entry.Name)]
		if free < entry.Quantity {
			return &AvailabilityError{
				Kind:      InsufficientQuantity,
				Resource:  res.Name,
				Date:      date,
				Start:     start,
				End:       end,
				Free:      free,
				Requested: entry.Quantity,
			}
		}
	}
	return nil
}

func (e *Engine) fetchUsage(ctx context.Context, date Date, start, end TimeOfDay) (*Inventory, map[string]int, error) {
	inv, err := e.Catalog.ReadInventory(ctx)
	if err != nil {
		return nil, nil, &SourceError{Op: "read inventory", Err: err}
	}
	records, err := e.Ledger.ReadAll(ctx)
	if err != nil {
		return nil, nil, &SourceError{Op: "read bookings", Err: err}
	}
	return inv, UsageIn(records, date, start, end), nil
}

// UsageIn sums the resource quantities of every record on the probe
// date whose window overlaps [start, end). Each overlapping record
// contributes exactly once; non-overlapping records contribute nothing.
// Keys are normalized resource names.
func UsageIn(records []Record, date Date, start, end TimeOfDay) map[string]int {
	used := make(map[string]int)
	for _, rec := range records {
		if !rec.Date.Equal(date) {
			continue
		}
		if !Overlaps(start, end, rec.Start, rec.End) {
			continue
		}
		for _, entry := range rec.Resources.Entries() {
			used[NormalizeName(entry.Name)] += entry.Quantity
		}
	}
	return used
}

// =============================================================================
// AVAILABILITY REPORT - Read-side view of a window
// =============================================================================

// ResourceAvailability is the per-resource breakdown of a window:
// total stock, committed usage, the remaining free count, and the
// used/total utilization ratio.
type ResourceAvailability struct {
	Name        string
	Total       int
	Used        int
	Free        int
	Utilization decimal.Decimal
}

// Report computes availability for every cataloged resource in the
// window, in catalog order. Zero-stock resources report utilization 0.
func (e *Engine) Report(ctx context.Context, date Date, start, end TimeOfDay) ([]ResourceAvailability, error) {
	inv, used, err := e.fetchUsage(ctx, date, start, end)
	if err != nil {
		return nil, err
	}

	report := make([]ResourceAvailability, 0, inv.Len())
	for _, res := range inv.Resources() {
		u := used[NormalizeName(res.Name)]
		free := res.Quantity - u
		if free < 0 {
			free = 0 // ledger overcommit: clamp rather than report negative stock
		}
		utilization := decimal.Zero
		if res.Quantity > 0 {
			utilization = decimal.NewFromInt(int64(u)).
				Div(decimal.NewFromInt(int64(res.Quantity))).
				Round(4)
		}
		report = append(report, ResourceAvailability{
			Name:        res.Name,
			Total:       res.Quantity,
			Used:        u,
			Free:        free,
			Utilization: utilization,
		})
	}
	return report, nil
}
