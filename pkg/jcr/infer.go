package jcr

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jdigger/aem-grapher/pkg/errors"
)

// Infer computes the association set for nodes.
//
// Every unordered pair of distinct nodes is evaluated once; structurally
// equal duplicates in the input are collapsed first. The result is
// de-duplicated and sorted by [CompareAssociations].
//
// Infer fails with DUPLICATE_RESOURCE_TYPE when two different components
// declare the same resource type. No partial result is returned.
func Infer(nodes []Node) ([]Association, error) {
	return (&Inferrer{}).Infer(context.Background(), nodes)
}

// Inferrer evaluates association rules over a node set.
//
// The zero value is ready to use: sequential and silent.
type Inferrer struct {
	// Logger receives debug lines for pairs that do not associate.
	// Nil discards them.
	Logger *log.Logger

	// Workers bounds concurrent pair evaluation. Values below 2 evaluate
	// sequentially. Output does not depend on this setting.
	Workers int
}

// Infer is [Infer] with logging, optional fan-out and cancellation.
func (in *Inferrer) Infer(ctx context.Context, nodes []Node) ([]Association, error) {
	logger := in.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	set := uniqueNodes(nodes)
	rows := make([]pairRow, len(set))

	if in.Workers < 2 || len(set) < 2 {
		for i := range set {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows[i] = evalRow(logger, set, i)
			if rows[i].err != nil {
				return nil, rows[i].err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(in.Workers)
		for i := range set {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rows[i] = evalRow(logger, set, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Rows are merged in index order so the reported error does not depend
	// on scheduling.
	seen := make(map[string]bool)
	var out []Association
	for _, row := range rows {
		if row.err != nil {
			return nil, row.err
		}
		for _, a := range row.assocs {
			id := a.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, a)
		}
	}
	SortAssociations(out)
	return out, nil
}

// pairRow holds the associations of node i with every node after it.
type pairRow struct {
	assocs []Association
	err    error
}

func evalRow(logger *log.Logger, set []Node, i int) pairRow {
	var row pairRow
	for j := i + 1; j < len(set); j++ {
		as, err := associate(logger, set[i], set[j])
		if err != nil {
			row.err = err
			return row
		}
		row.assocs = append(row.assocs, as...)
	}
	return row
}

// uniqueNodes drops nil entries (typed nil pointers too) and structural
// duplicates, then sorts.
func uniqueNodes(nodes []Node) []Node {
	set := lo.UniqBy(lo.Reject(nodes, func(n Node, _ int) bool { return isNil(n) }), Fingerprint)
	SortNodes(set)
	return set
}

// associate applies the rule set to one unordered pair.
func associate(logger *log.Logger, a, b Node) ([]Association, error) {
	switch a.Kind() {
	case KindComponent:
		switch b.Kind() {
		case KindComponent:
			return nil, componentPair(logger, a, b)
		case KindClientlib:
			return componentClientlib(logger, a, b)
		}
	case KindClientlib:
		switch b.Kind() {
		case KindComponent:
			return componentClientlib(logger, b, a)
		case KindClientlib:
			return clientlibPair(a, b)
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "cannot associate %s with %s", a.Kind(), b.Kind())
}

// componentPair never associates; a shared resource type is corrupt input.
func componentPair(logger *log.Logger, a, b Node) error {
	if a.Key() == b.Key() {
		return errors.Duplicate(a.Key(), a.String(), b.String())
	}
	logger.Debug("not associated", "left", a, "right", b)
	return nil
}

func componentClientlib(logger *log.Logger, comp, lib Node) ([]Association, error) {
	c, _ := AsComponent(comp)
	l, _ := AsClientlib(lib)
	owner, ok := OwningPath(l.Path)
	if !ok || owner != c.ResourceType {
		logger.Debug("not associated", "component", c, "clientlib", l, "owner", owner)
		return nil, nil
	}
	a, err := NewAssociation(comp, lib, ClientlibForComponent)
	if err != nil {
		return nil, err
	}
	return []Association{a}, nil
}

func clientlibPair(a, b Node) ([]Association, error) {
	la, _ := AsClientlib(a)
	lb, _ := AsClientlib(b)

	var types []AssociationType
	if _, ok := SharedCategory(la.Categories, lb.Categories); ok {
		types = append(types, ClientlibShareCategory)
	}
	if dependsOn(la, lb) || dependsOn(lb, la) {
		types = append(types, ClientlibDependency)
	}
	if embeds(la, lb) || embeds(lb, la) {
		types = append(types, ClientlibEmbed)
	}

	out := make([]Association, 0, len(types))
	for _, t := range types {
		as, err := NewAssociation(a, b, t)
		if err != nil {
			return nil, err
		}
		out = append(out, as)
	}
	return out, nil
}

// dependsOn reports whether outer lists any category of inner as a dependency.
func dependsOn(outer, inner Clientlib) bool {
	return lo.ContainsBy(inner.Categories, func(c string) bool { return lo.Contains(outer.Dependencies, c) })
}

// embeds reports whether outer embeds any category of inner.
func embeds(outer, inner Clientlib) bool {
	return lo.ContainsBy(inner.Categories, func(c string) bool { return lo.Contains(outer.Embed, c) })
}

// OwningPath returns the resource type a clientlib folder belongs to.
//
// A clientlib at "<apps|libs>/<resource type>/<folder>" is owned by
// "<resource type>": the root segment and the final segment are stripped.
// Paths under any other root, or with fewer than three segments, have no
// owner.
func OwningPath(clientlibPath string) (string, bool) {
	segs := strings.Split(clientlibPath, "/")
	if len(segs) < 3 {
		return "", false
	}
	if segs[0] != "apps" && segs[0] != "libs" {
		return "", false
	}
	return strings.Join(segs[1:len(segs)-1], "/"), true
}
