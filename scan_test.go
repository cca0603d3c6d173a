package fdw_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fdw "github.com/wrapgate/postgres-fdw"
	"github.com/wrapgate/postgres-fdw/fdwtest"
	"github.com/wrapgate/postgres-fdw/types"
)

// sliceIterator serves a fixed set of rows and records Close calls.
type sliceIterator struct {
	rows   [][]any
	index  int
	closed bool
}

func (i *sliceIterator) Next() ([]any, error) {
	if idx := i.index; idx < len(i.rows) {
		i.index++
		return i.rows[idx], nil
	}
	return nil, nil
}

func (i *sliceIterator) Close() { i.closed = true }

// fixtureTable is a read-only capability serving fixed rows and counting
// Execute calls.
type fixtureTable struct {
	fdw.ReadOnlyTable
	rows         [][]any
	executeCalls int
	iter         *sliceIterator
}

func (f *fixtureTable) Execute(_ *types.TupleDesc) (fdw.RowIterator, error) {
	f.executeCalls++
	f.iter = &sliceIterator{rows: f.rows}
	return f.iter, nil
}

func newFixtureWrapper(rows [][]any) (*fdw.Wrapper[*fixtureTable], *fixtureTable) {
	fixture := &fixtureTable{rows: rows}
	begin := func(_ *types.Options) (*fixtureTable, error) { return fixture, nil }
	return fdw.New(fdwtest.Env(nil), begin), fixture
}

func usersRelation() *types.Relation {
	return fdwtest.TextRelation(1, "public", "users", "id", "name", "email")
}

func TestScanLifecycle(t *testing.T) {
	wrapper, fixture := newFixtureWrapper([][]any{
		{"1", "a", "a@x"},
		{"2", "b", "b@x"},
	})
	routine := wrapper.Routine()
	node := fdwtest.NewScanNode(usersRelation())

	require.NoError(t, routine.BeginForeignScan(node, 0))
	assert.Zero(t, fixture.executeCalls, "execute must not run before the first row request")

	slot, err := routine.IterateForeignScan(node)
	require.NoError(t, err)
	assert.Equal(t, []types.Datum{"1", "a", "a@x"}, slot.(*fdwtest.Slot).Row())

	slot, err = routine.IterateForeignScan(node)
	require.NoError(t, err)
	assert.Equal(t, []types.Datum{"2", "b", "b@x"}, slot.(*fdwtest.Slot).Row())

	// exhaustion: the cleared slot is the end-of-scan signal, repeatedly
	for i := 0; i < 3; i++ {
		slot, err = routine.IterateForeignScan(node)
		require.NoError(t, err)
		assert.False(t, slot.(*fdwtest.Slot).Stored)
		assert.Zero(t, slot.NValid())
	}

	assert.Equal(t, 1, fixture.executeCalls, "execute runs exactly once per scan")
	require.NoError(t, routine.EndForeignScan(node))
	assert.True(t, fixture.iter.closed, "end must close the row producer")
}

func TestScanEmptyProducer(t *testing.T) {
	wrapper, fixture := newFixtureWrapper(nil)
	routine := wrapper.Routine()
	node := fdwtest.NewScanNode(usersRelation())

	require.NoError(t, routine.BeginForeignScan(node, 0))
	slot, err := routine.IterateForeignScan(node)
	require.NoError(t, err)
	assert.False(t, slot.(*fdwtest.Slot).Stored)
	assert.Equal(t, 1, fixture.executeCalls)
}

func TestRescanKeepsProducer(t *testing.T) {
	wrapper, fixture := newFixtureWrapper([][]any{
		{"1", "a", "a@x"},
		{"2", "b", "b@x"},
	})
	routine := wrapper.Routine()
	node := fdwtest.NewScanNode(usersRelation())

	require.NoError(t, routine.BeginForeignScan(node, 0))
	_, err := routine.IterateForeignScan(node)
	require.NoError(t, err)

	require.NoError(t, routine.ReScanForeignScan(node))

	slot, err := routine.IterateForeignScan(node)
	require.NoError(t, err)
	assert.Equal(t, []types.Datum{"2", "b", "b@x"}, slot.(*fdwtest.Slot).Row())
	assert.Equal(t, 1, fixture.executeCalls)
}

func TestIterateWithoutBegin(t *testing.T) {
	wrapper, _ := newFixtureWrapper(nil)
	node := fdwtest.NewScanNode(usersRelation())

	_, err := wrapper.Routine().IterateForeignScan(node)
	var fdwErr *fdw.Error
	require.True(t, errors.As(err, &fdwErr))
	assert.Equal(t, fdw.ErrcodeFdwFunctionSequenceError, fdwErr.Code)
}

func TestEndedSessionIsGone(t *testing.T) {
	wrapper, _ := newFixtureWrapper(nil)
	routine := wrapper.Routine()
	node := fdwtest.NewScanNode(usersRelation())

	require.NoError(t, routine.BeginForeignScan(node, 0))
	require.NoError(t, routine.EndForeignScan(node))

	_, err := routine.IterateForeignScan(node)
	var fdwErr *fdw.Error
	require.True(t, errors.As(err, &fdwErr))
	assert.Equal(t, fdw.ErrcodeFdwFunctionSequenceError, fdwErr.Code)
}

func TestUnclearableSlotIsFatal(t *testing.T) {
	wrapper, _ := newFixtureWrapper([][]any{{"1", "a", "a@x"}})
	routine := wrapper.Routine()
	node := fdwtest.NewScanNode(usersRelation())
	node.Slot.NoClear = true

	require.NoError(t, routine.BeginForeignScan(node, 0))
	_, err := routine.IterateForeignScan(node)
	var fdwErr *fdw.Error
	require.True(t, errors.As(err, &fdwErr))
	assert.Equal(t, fdw.ErrcodeFdwError, fdwErr.Code)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	wrapper, _ := newFixtureWrapper([][]any{{"1", "a", "a@x"}})
	routine := wrapper.Routine()
	first := fdwtest.NewScanNode(usersRelation())
	second := fdwtest.NewScanNode(usersRelation())

	require.NoError(t, routine.BeginForeignScan(first, 0))
	require.NoError(t, routine.BeginForeignScan(second, 0))
	assert.NotEqual(t, first.State().Get(), second.State().Get())

	require.NoError(t, routine.EndForeignScan(first))
	// the second session survives the first one ending
	_, err := routine.IterateForeignScan(second)
	require.NoError(t, err)
	require.NoError(t, routine.EndForeignScan(second))
}

func TestPlannerDefaults(t *testing.T) {
	wrapper, _ := newFixtureWrapper(nil)
	routine := wrapper.Routine()
	rel := &fdwtest.PlannerRel{Rel: usersRelation(), Relid: 3}

	require.NoError(t, routine.GetForeignRelSize(rel))
	assert.Zero(t, rel.Rows)

	require.NoError(t, routine.GetForeignPaths(rel))
	require.Len(t, rel.Paths, 1)
	assert.Equal(t, types.Cost(10), rel.Paths[0].StartupCost)
	assert.Equal(t, types.Cost(0), rel.Paths[0].TotalCost)

	plan, err := routine.GetForeignPlan(rel, "tlist", "clauses", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.ScanRelid)
	assert.Equal(t, "tlist", plan.TargetList)
	assert.Equal(t, "clauses", plan.Clauses)
}

func TestPlannerServerOverrides(t *testing.T) {
	fixture := &fixtureTable{}
	begin := func(_ *types.Options) (*fixtureTable, error) { return fixture, nil }
	env := fdwtest.Env(&fdwtest.Catalog{
		Server: fdwtest.Defs(map[string]string{"row_estimate": "100", "startup_cost": "2.5"}),
	})
	routine := fdw.New(env, begin).Routine()
	rel := &fdwtest.PlannerRel{Rel: usersRelation(), Relid: 1}

	require.NoError(t, routine.GetForeignRelSize(rel))
	assert.Equal(t, float64(100), rel.Rows)

	require.NoError(t, routine.GetForeignPaths(rel))
	require.Len(t, rel.Paths, 1)
	assert.Equal(t, types.Cost(2.5), rel.Paths[0].StartupCost)
}

func TestRoutineOptionalEntriesAbsent(t *testing.T) {
	wrapper, _ := newFixtureWrapper(nil)
	routine := wrapper.Routine()

	assert.NotNil(t, routine.GetForeignRelSize)
	assert.NotNil(t, routine.IterateForeignScan)
	assert.NotNil(t, routine.ExecForeignUpdate)

	for name, entry := range map[string]fdw.HostFunc{
		"PlanForeignModify":         routine.PlanForeignModify,
		"PlanDirectModify":          routine.PlanDirectModify,
		"GetForeignJoinPaths":       routine.GetForeignJoinPaths,
		"GetForeignUpperPaths":      routine.GetForeignUpperPaths,
		"AnalyzeForeignTable":       routine.AnalyzeForeignTable,
		"ImportForeignSchema":       routine.ImportForeignSchema,
		"IsForeignScanParallelSafe": routine.IsForeignScanParallelSafe,
		"ShutdownForeignScan":       routine.ShutdownForeignScan,
	} {
		assert.Nil(t, entry, "%s must stay unregistered", name)
	}
}
