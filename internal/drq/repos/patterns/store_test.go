package patterns

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/drq-attack/internal/drq/domain"
)

// exactFilter is a Bloom stand-in with no false positives.
type exactFilter struct {
	keys map[string]struct{}
}

func (f *exactFilter) Add(key []byte) { f.keys[string(key)] = struct{}{} }

func (f *exactFilter) MightContain(key []byte) bool {
	_, ok := f.keys[string(key)]
	return ok
}

type exactFactory struct {
	built int
}

func (f *exactFactory) New(uint64, float64) BloomFilter {
	f.built++
	return &exactFilter{keys: make(map[string]struct{})}
}

// denyFilter answers "definitely absent" for everything.
type denyFilter struct{}

func (denyFilter) Add([]byte)               {}
func (denyFilter) MightContain([]byte) bool { return false }

type denyFactory struct{}

func (denyFactory) New(uint64, float64) BloomFilter { return denyFilter{} }

// allowFilter answers "maybe present" for everything.
type allowFilter struct{}

func (allowFilter) Add([]byte)               {}
func (allowFilter) MightContain([]byte) bool { return true }

type allowFactory struct{}

func (allowFactory) New(uint64, float64) BloomFilter { return allowFilter{} }

func mustPattern(t testing.TB, target string, queries ...string) domain.Pattern {
	t.Helper()
	p, err := domain.NewPattern(target, queries...)
	require.NoError(t, err)
	return p
}

func scenarioStore(t testing.TB) *Store {
	t.Helper()
	s, err := Load([]domain.Pattern{
		mustPattern(t, "a.com", "x.com", "y.com"),
		mustPattern(t, "b.com", "x.com", "z.com"),
	}, Options{})
	require.NoError(t, err)
	return s
}

// syntheticStore builds n targets with lengths cycling 1..4 over a shared host pool.
func syntheticStore(t testing.TB, n int) *Store {
	t.Helper()
	pats := make([]domain.Pattern, 0, n)
	for i := 0; i < n; i++ {
		length := i%4 + 1
		queries := make([]string, 0, length-1)
		for j := 1; j < length; j++ {
			queries = append(queries, fmt.Sprintf("cdn%02d.net", (i*7+j*3)%40))
		}
		pats = append(pats, mustPattern(t, fmt.Sprintf("t%03d.com", i), queries...))
	}
	s, err := Load(pats, Options{Factory: &exactFactory{}})
	require.NoError(t, err)
	return s
}

func TestStore_AddTargetAndLookup(t *testing.T) {
	s := scenarioStore(t)
	full := s.Full()

	p, ok := full.Pattern("a.com")
	require.True(t, ok)
	assert.Equal(t, []string{"a.com", "x.com", "y.com"}, p.Hosts())
	assert.True(t, p.Contains(p.Target()))

	assert.Equal(t, 3, full.PatternLength("b.com"))
	assert.Equal(t, 0, full.PatternLength("x.com"))
	assert.True(t, full.IsValidTarget("a.com"))
	assert.False(t, full.IsValidTarget("x.com"))

	assert.Equal(t, []string{"a.com", "b.com"}, full.TargetsWithLength(3))
	assert.Empty(t, full.TargetsWithLength(2))
	assert.Equal(t, []string{"a.com", "b.com"}, full.TargetsContaining("x.com"))
	assert.Equal(t, []string{"b.com"}, full.TargetsContaining("z.com"))

	assert.Equal(t, 5, full.UniverseSize())
	assert.Equal(t, 2, full.TargetCount())
	assert.Equal(t, 3, full.MaxPatternLength())
	assert.Equal(t, []int{3}, full.Lengths())
	assert.True(t, full.MightContain("y.com"))
	assert.False(t, full.MightContain("nope.com"))

	assert.Same(t, s.Full(), s.Client(), "client view defaults to full view")
}

func TestStore_AddTargetErrors(t *testing.T) {
	s := scenarioStore(t)

	err := s.AddTarget(mustPattern(t, "a.com", "q.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTarget)

	err = s.AddTarget(domain.Pattern{})
	assert.ErrorIs(t, err, domain.ErrEmptyPattern)

	_, err = Load([]domain.Pattern{mustPattern(t, "a.com"), mustPattern(t, "a.com", "x.com")}, Options{})
	assert.ErrorIs(t, err, domain.ErrDuplicateTarget)
}

func TestStore_PatternRoundTrip(t *testing.T) {
	s := syntheticStore(t, 64)
	for _, target := range s.Full().Targets() {
		p, ok := s.Full().Pattern(target)
		require.True(t, ok)
		assert.True(t, p.Contains(target))
		assert.Equal(t, target, p.Hosts()[0])
		for _, h := range p.Hosts() {
			assert.Contains(t, s.Full().TargetsContaining(h), target)
			assert.True(t, s.Full().MightContain(h))
		}
	}
}

func TestStore_PartitionUnrestricted(t *testing.T) {
	s := syntheticStore(t, 40)
	size, err := s.Partition(-1, SeededRand(-1))
	require.NoError(t, err)

	assert.Equal(t, s.Full().UniverseSize(), size)
	assert.Same(t, s.Full(), s.Client())
	for _, l := range s.Full().Lengths() {
		assert.Equal(t, s.Full().TargetsWithLength(l), s.Client().TargetsWithLength(l))
	}
}

func TestStore_PartitionFullSizeBudget(t *testing.T) {
	s := syntheticStore(t, 40)
	total := s.Full().UniverseSize()
	size, err := s.Partition(total, SeededRand(total))
	require.NoError(t, err)
	assert.Equal(t, total, size)
	assert.Same(t, s.Full(), s.Client())
}

func TestStore_PartitionDeterministic(t *testing.T) {
	s := syntheticStore(t, 80)
	budget := s.Full().UniverseSize() / 2

	first, err := s.Partition(budget, SeededRand(budget))
	require.NoError(t, err)
	firstTargets := s.Client().Targets()

	second, err := s.Partition(budget, SeededRand(budget))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstTargets, s.Client().Targets())

	other := syntheticStore(t, 80)
	third, err := other.Partition(budget, SeededRand(budget))
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, firstTargets, other.Client().Targets())
}

func TestStore_PartitionRespectsBudget(t *testing.T) {
	s := syntheticStore(t, 80)
	for _, budget := range []int{1, 5, 17, 30} {
		size, err := s.Partition(budget, SeededRand(budget))
		require.NoError(t, err)
		assert.LessOrEqual(t, size, budget)

		client := s.Client()
		assert.Equal(t, size, client.UniverseSize())
		covered := domain.HostSet{}
		for _, target := range client.Targets() {
			cp, ok := client.Pattern(target)
			require.True(t, ok)
			fp, ok := s.Full().Pattern(target)
			require.True(t, ok)
			assert.Equal(t, fp.Hosts(), cp.Hosts(), "client patterns are unmodified full patterns")
			covered.Add(cp.Hosts()...)
		}
		assert.Equal(t, size, covered.Len())
		for _, h := range covered.Sorted() {
			assert.True(t, client.MightContain(h))
		}
	}
}

func TestStore_PartitionErrors(t *testing.T) {
	s := syntheticStore(t, 20)
	total := s.Full().UniverseSize()

	_, err := s.Partition(total+1, SeededRand(total+1))
	assert.ErrorIs(t, err, domain.ErrBudgetExceedsUniverse)

	_, err = s.Partition(0, SeededRand(0))
	assert.ErrorIs(t, err, domain.ErrInvalidBudget)

	_, err = s.Partition(-5, SeededRand(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidBudget)
}

func TestStore_SealedAfterPartition(t *testing.T) {
	s := scenarioStore(t)
	_, err := s.Partition(-1, SeededRand(-1))
	require.NoError(t, err)
	assert.ErrorIs(t, s.AddTarget(mustPattern(t, "c.com")), domain.ErrStoreSealed)
}

func TestStore_PartitionBuildsClientFilter(t *testing.T) {
	f := &exactFactory{}
	s, err := Load([]domain.Pattern{
		mustPattern(t, "a.com", "x.com"),
		mustPattern(t, "b.com", "y.com"),
		mustPattern(t, "c.com", "z.com"),
	}, Options{Factory: f})
	require.NoError(t, err)
	require.Equal(t, 1, f.built)

	_, err = s.Partition(4, SeededRand(4))
	require.NoError(t, err)
	assert.Equal(t, 2, f.built)
	assert.Equal(t, 4, s.Client().UniverseSize())
}

func TestView_MightContainAnsweredByFilter(t *testing.T) {
	pats := []domain.Pattern{mustPattern(t, "a.com", "x.com")}

	deny, err := Load(pats, Options{Factory: denyFactory{}})
	require.NoError(t, err)
	assert.False(t, deny.Full().MightContain("a.com"))
	assert.True(t, deny.Full().IsValidTarget("a.com"))

	allow, err := Load(pats, Options{Factory: allowFactory{}})
	require.NoError(t, err)
	assert.True(t, allow.Full().MightContain("nope.com"), "no exact check behind the filter")

	exact, err := Load(pats, Options{})
	require.NoError(t, err)
	assert.True(t, exact.Full().MightContain("x.com"))
	assert.False(t, exact.Full().MightContain("nope.com"))
}

func TestView_RandomHosts(t *testing.T) {
	s := syntheticStore(t, 60)
	v := s.Full()
	rng := rand.New(rand.NewPCG(1, 2))

	got, err := v.RandomHosts(rng, 10, nil)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, 10, domain.NewHostSet(got...).Len(), "no duplicates")

	all, err := v.RandomHosts(rng, v.UniverseSize()+50, nil)
	require.NoError(t, err)
	assert.Len(t, all, v.UniverseSize(), "undersized pool returns what exists")

	exclude := domain.NewHostSet(v.hosts[:v.UniverseSize()-3]...)
	rest, err := v.RandomHosts(rng, 10, exclude)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	for _, h := range rest {
		assert.False(t, exclude.Has(h))
	}

	none, err := v.RandomHosts(rng, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = v.RandomHosts(rng, -1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCount)
}

func TestView_RandomHostsByLength(t *testing.T) {
	s := syntheticStore(t, 60)
	v := s.Full()
	rng := rand.New(rand.NewPCG(3, 4))

	got, err := v.RandomHostsByLength(rng, 2, 5, domain.NewHostSet("t001.com"))
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for _, h := range got {
		assert.Equal(t, 2, v.PatternLength(h))
		assert.NotEqual(t, "t001.com", h)
	}

	many, err := v.RandomHostsByLength(rng, 2, 1000, nil)
	require.NoError(t, err)
	assert.Len(t, many, len(v.TargetsWithLength(2)))

	missing, err := v.RandomHostsByLength(rng, 9, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = v.RandomHostsByLength(rng, 0, 3, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLength)
	_, err = v.RandomHostsByLength(rng, -2, 3, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLength)
	_, err = v.RandomHostsByLength(rng, 2, -3, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCount)
}

func TestView_RandomTarget(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	empty := New(Options{})
	_, ok := empty.Full().RandomTarget(rng)
	assert.False(t, ok)

	s := scenarioStore(t)
	target, ok := s.Full().RandomTarget(rng)
	require.True(t, ok)
	assert.True(t, s.Full().IsValidTarget(target))
}

func TestSample_Deterministic(t *testing.T) {
	pool := make([]string, 100)
	for i := range pool {
		pool[i] = fmt.Sprintf("h%03d", i)
	}
	a := sample(rand.New(rand.NewPCG(9, 9)), pool, 7, nil)
	b := sample(rand.New(rand.NewPCG(9, 9)), pool, 7, nil)
	assert.Equal(t, a, b)

	big := sample(rand.New(rand.NewPCG(9, 9)), pool, 80, nil)
	assert.Len(t, big, 80)
	assert.Equal(t, 80, domain.NewHostSet(big...).Len())
}

func BenchmarkView_RandomHosts(b *testing.B) {
	s := syntheticStore(b, 2000)
	v := s.Full()
	rng := rand.New(rand.NewPCG(1, 1))
	exclude := domain.NewHostSet("t000.com")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = v.RandomHosts(rng, 49, exclude)
	}
}
