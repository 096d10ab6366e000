// Package budget holds the Objective → Product → Activity cost tree and the
// closure rules the MGA methodology imposes on it: activities must sum to
// their product, products to their objective, objectives to the declared
// project value.
package budget

import (
	"fmt"
	"iter"
	"math"

	"github.com/oagudelo/mgadoc/internal/money"
)

// Activity is a leaf cost node.
type Activity struct {
	Code  string
	Name  string
	Cost  money.Amount
	Stage string // lifecycle tag, "Inversión" or "Operación"
}

// Product is a deliverable. Its cost must equal the sum of its activities.
type Product struct {
	Code          string
	Name          string
	Unit          string
	Quantity      string
	Cost          money.Amount
	Stage         string
	Location      string
	Beneficiaries int
	Activities    []*Activity
}

// Objective is a top-level node. Its cost must equal the sum of its products.
type Objective struct {
	Number      string
	Description string
	Cost        money.Amount
	Products    []*Product
}

// Adjustment records one cost rescale performed to close the budget sums.
// Adjustments are audit data: the run succeeds, but the caller can see what
// was touched.
type Adjustment struct {
	Level    string // "objetivo", "producto", "actividad"
	Code     string
	Name     string
	Original money.Amount
	Adjusted money.Amount
}

// Tree is the validated budget tree. It is built once per run and read-only
// afterward.
type Tree struct {
	Objectives    []*Objective
	DeclaredTotal money.Amount
	Adjustments   []Adjustment
}

// Triple is one step of a full traversal.
type Triple struct {
	Objective *Objective
	Product   *Product
	Activity  *Activity
}

// ValidationError is fatal: the tree is structurally unusable and rescaling
// cannot repair it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "budget tree invalid: " + e.Reason
}

// Options tunes the closure check.
type Options struct {
	// Tolerance is the allowed absolute difference, in minor units, between a
	// parent cost and the sum of its children before a rescale kicks in.
	Tolerance money.Amount
}

// DefaultOptions allows one minor unit of drift per level, enough to absorb
// rounding from percentage-based splits.
func DefaultOptions() Options {
	return Options{Tolerance: 1}
}

// Validate checks the structure and closes the sums. Repair is top-down:
// objectives are scaled to the declared total, then each objective's products
// to the (possibly adjusted) objective cost, then each product's activities.
// After Validate returns nil, every level sums exactly to its parent.
func (t *Tree) Validate(opts Options) error {
	if len(t.Objectives) == 0 {
		return &ValidationError{Reason: "no objectives"}
	}
	hasProduct := false
	for _, obj := range t.Objectives {
		if len(obj.Products) > 0 {
			hasProduct = true
		}
	}
	if !hasProduct {
		return &ValidationError{Reason: "no products under any objective"}
	}

	// A costed product with no activities gets a single synthetic execution
	// activity so the leaf level exists everywhere.
	for _, obj := range t.Objectives {
		for _, p := range obj.Products {
			if len(p.Activities) == 0 && p.Cost != 0 {
				a := &Activity{
					Code:  p.Code + ".1",
					Name:  "Ejecución " + p.Name,
					Cost:  p.Cost,
					Stage: p.Stage,
				}
				p.Activities = append(p.Activities, a)
				t.Adjustments = append(t.Adjustments, Adjustment{
					Level: "actividad", Code: a.Code, Name: a.Name,
					Original: 0, Adjusted: a.Cost,
				})
			}
		}
	}

	// Level 1: objectives against the declared total.
	if t.DeclaredTotal != 0 {
		objCosts := make([]money.Amount, len(t.Objectives))
		for i, obj := range t.Objectives {
			objCosts[i] = obj.Cost
		}
		if rescaled, changed := rescale(objCosts, t.DeclaredTotal, opts.Tolerance); changed {
			for i, obj := range t.Objectives {
				if rescaled[i] != obj.Cost {
					t.Adjustments = append(t.Adjustments, Adjustment{
						Level: "objetivo", Code: obj.Number, Name: obj.Description,
						Original: obj.Cost, Adjusted: rescaled[i],
					})
					obj.Cost = rescaled[i]
				}
			}
		}
	}

	// Level 2: products against their objective.
	for _, obj := range t.Objectives {
		costs := make([]money.Amount, len(obj.Products))
		for i, p := range obj.Products {
			costs[i] = p.Cost
		}
		if rescaled, changed := rescale(costs, obj.Cost, opts.Tolerance); changed {
			for i, p := range obj.Products {
				if rescaled[i] != p.Cost {
					t.Adjustments = append(t.Adjustments, Adjustment{
						Level: "producto", Code: p.Code, Name: p.Name,
						Original: p.Cost, Adjusted: rescaled[i],
					})
					p.Cost = rescaled[i]
				}
			}
		}
	}

	// Level 3: activities against their product.
	for _, obj := range t.Objectives {
		for _, p := range obj.Products {
			costs := make([]money.Amount, len(p.Activities))
			for i, a := range p.Activities {
				costs[i] = a.Cost
			}
			if rescaled, changed := rescale(costs, p.Cost, opts.Tolerance); changed {
				for i, a := range p.Activities {
					if rescaled[i] != a.Cost {
						t.Adjustments = append(t.Adjustments, Adjustment{
							Level: "actividad", Code: a.Code, Name: a.Name,
							Original: a.Cost, Adjusted: rescaled[i],
						})
						a.Cost = rescaled[i]
					}
				}
			}
		}
	}

	return nil
}

// rescale scales values proportionally so they sum exactly to target. The
// last element absorbs integer-division residue. Returns changed=false when
// the drift is within tolerance (including an exact match).
func rescale(values []money.Amount, target, tolerance money.Amount) ([]money.Amount, bool) {
	if len(values) == 0 {
		return nil, false
	}
	var sum money.Amount
	for _, v := range values {
		sum += v
	}
	diff := sum - target
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return nil, false
	}

	out := make([]money.Amount, len(values))
	var assigned money.Amount
	for i, v := range values {
		if i == len(values)-1 {
			out[i] = target - assigned
			break
		}
		if sum == 0 {
			// No proportions to preserve: split evenly.
			out[i] = target / money.Amount(len(values))
		} else {
			// Floating point avoids int64 overflow on v*target; the residue
			// lands on the last element either way.
			out[i] = money.Amount(math.Round(float64(v) / float64(sum) * float64(target)))
		}
		assigned += out[i]
	}
	return out, true
}

// Total returns the sum of objective costs.
func (t *Tree) Total() money.Amount {
	var sum money.Amount
	for _, obj := range t.Objectives {
		sum += obj.Cost
	}
	return sum
}

// Products returns every product in traversal order.
func (t *Tree) Products() []*Product {
	var out []*Product
	for _, obj := range t.Objectives {
		out = append(out, obj.Products...)
	}
	return out
}

// ObjectiveOf returns the objective a product belongs to, or nil.
func (t *Tree) ObjectiveOf(p *Product) *Objective {
	for _, obj := range t.Objectives {
		for _, q := range obj.Products {
			if q == p {
				return obj
			}
		}
	}
	return nil
}

// Traverse yields (objective, product, activity) triples in insertion order.
// Each call starts a fresh traversal.
func (t *Tree) Traverse() iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, obj := range t.Objectives {
			for _, p := range obj.Products {
				for _, a := range p.Activities {
					if !yield(Triple{Objective: obj, Product: p, Activity: a}) {
						return
					}
				}
			}
		}
	}
}

func (t *Tree) String() string {
	return fmt.Sprintf("budget tree: %d objectives, %d products, total %s",
		len(t.Objectives), len(t.Products()), t.Total().Format())
}
