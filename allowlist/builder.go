package allowlist

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/merklegate/merklegate/core/types"
	"github.com/merklegate/merklegate/merkle"
	"github.com/merklegate/merklegate/metrics"
)

// Fatal build errors. Any of these aborts the run before output is written.
var (
	// ErrNoSurvivors is returned when every record was rejected.
	ErrNoSurvivors = errors.New("allowlist: no valid addresses survived normalization")

	// ErrSelfCheck is returned when a freshly generated proof fails to
	// reproduce the root. That is a builder/verifier inconsistency, not bad
	// input, so the whole build is discarded.
	ErrSelfCheck = errors.New("allowlist: proof failed self-verification")
)

// Entry is one committed address: its position in the tree, the metadata it
// arrived with, its leaf digest, and its membership proof.
type Entry struct {
	Address  types.Address
	Display  string // canonical checksummed form
	Line     int
	Metadata []string
	Leaf     types.Hash
	Proof    []types.Hash
}

// Report is the complete outcome of one build: the commitment, every
// accepted entry in survivor order, and every rejection with its line
// number. The pipeline never prints; callers render the report however
// they like.
type Report struct {
	Root          types.Hash
	Height        int
	Entries       []Entry
	Rejections    []Rejection
	HeaderSkipped bool

	// TotalWeight sums the first metadata field of accepted entries over
	// those records where it parses as a decimal integer (voting-power
	// style inputs). Nil when no record carried a numeric weight. Weights
	// never influence leaf hashing.
	TotalWeight *uint256.Int
}

// Option adjusts build behavior.
type Option func(*buildConfig)

type buildConfig struct {
	registry *metrics.Registry
}

// WithRegistry records pipeline counters and build timing into r.
func WithRegistry(r *metrics.Registry) Option {
	return func(c *buildConfig) { c.registry = r }
}

// Build runs the full pipeline over raw input text: parse, normalize,
// deduplicate, hash leaves, fold the tree, generate a proof per leaf, and
// self-verify every proof against the root. The returned Report is only
// produced when the self-verification pass succeeds in full.
func Build(input string, opts ...Option) (*Report, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = metrics.NewRegistry()
	}
	timer := metrics.NewTimer(cfg.registry.Histogram(metrics.BuildMillis))
	defer timer.Stop()

	records, headerSkipped, err := ParseRecords(input)
	if err != nil {
		return nil, err
	}
	cfg.registry.Counter(metrics.RecordsParsed).Add(int64(len(records)))

	report := &Report{HeaderSkipped: headerSkipped}
	seen := make(map[types.Address]bool, len(records))
	for _, rec := range records {
		switch addr, err := normalize(rec.Identifier); {
		case rec.Identifier == "":
			report.reject(rec, ReasonEmpty)
		case err != nil:
			report.reject(rec, ReasonInvalid)
		case seen[addr]:
			report.reject(rec, ReasonDuplicate)
		default:
			seen[addr] = true
			report.Entries = append(report.Entries, Entry{
				Address:  addr,
				Display:  addr.ChecksumHex(),
				Line:     rec.Line,
				Metadata: rec.Metadata,
			})
		}
	}
	cfg.registry.Counter(metrics.RecordsAccepted).Add(int64(len(report.Entries)))
	cfg.registry.Counter(metrics.RecordsRejected).Add(int64(len(report.Rejections)))

	if len(report.Entries) == 0 {
		return nil, ErrNoSurvivors
	}

	leaves := make([]types.Hash, len(report.Entries))
	for i := range report.Entries {
		report.Entries[i].Leaf = merkle.LeafHash(report.Entries[i].Address)
		leaves[i] = report.Entries[i].Leaf
	}

	tree, err := merkle.NewTree(leaves)
	if err != nil {
		return nil, err
	}
	report.Root = tree.Root()
	report.Height = tree.Height()
	cfg.registry.Gauge(metrics.TreeLeaves).Set(int64(tree.NumLeaves()))
	cfg.registry.Gauge(metrics.TreeHeight).Set(int64(tree.Height()))

	// Every proof is checked against the root before the report is trusted.
	for i := range report.Entries {
		proof, err := tree.Proof(i)
		if err != nil {
			return nil, err
		}
		if !merkle.VerifyProof(report.Entries[i].Leaf, proof, report.Root) {
			return nil, fmt.Errorf("%w: leaf %d (%s)", ErrSelfCheck, i, report.Entries[i].Display)
		}
		report.Entries[i].Proof = proof
	}

	report.TotalWeight = totalWeight(report.Entries)
	return report, nil
}

// normalize validates a candidate identifier into an Address. Split out so
// the dedup switch in Build reads as a plain accept/reject ladder.
func normalize(identifier string) (types.Address, error) {
	return types.ParseAddress(identifier)
}

func (r *Report) reject(rec Record, reason string) {
	r.Rejections = append(r.Rejections, Rejection{
		Line:   rec.Line,
		Value:  rec.Identifier,
		Reason: reason,
	})
}

// totalWeight sums the first metadata field across entries where it parses
// as an unsigned decimal integer. Returns nil when no entry carries one.
func totalWeight(entries []Entry) *uint256.Int {
	var total *uint256.Int
	for _, e := range entries {
		if len(e.Metadata) == 0 {
			continue
		}
		w, err := uint256.FromDecimal(e.Metadata[0])
		if err != nil {
			continue
		}
		if total == nil {
			total = new(uint256.Int)
		}
		total.Add(total, w)
	}
	return total
}

// FindEntry returns the committed entry for the given textual address, if
// the address normalizes and was committed.
func (r *Report) FindEntry(identifier string) (*Entry, bool) {
	addr, err := types.ParseAddress(identifier)
	if err != nil {
		return nil, false
	}
	for i := range r.Entries {
		if r.Entries[i].Address == addr {
			return &r.Entries[i], true
		}
	}
	return nil, false
}
