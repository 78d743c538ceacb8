package allowlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/merklegate/merklegate/merkle"
	"github.com/merklegate/merklegate/metrics"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
	addrC = "0x3333333333333333333333333333333333333333"
)

func TestBuildHappyPath(t *testing.T) {
	report, err := Build(addrA + "\n" + addrB + "\n" + addrC + "\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(report.Entries))
	}
	if report.Root.IsZero() {
		t.Error("root is zero")
	}
	if report.Height != 2 {
		t.Errorf("height = %d, want 2", report.Height)
	}
	for i, e := range report.Entries {
		if e.Leaf != merkle.LeafHash(e.Address) {
			t.Errorf("entry %d leaf digest mismatch", i)
		}
		if !merkle.VerifyProof(e.Leaf, e.Proof, report.Root) {
			t.Errorf("entry %d proof does not verify", i)
		}
	}
	// Survivor order is input order.
	if report.Entries[0].Line != 1 || report.Entries[2].Line != 3 {
		t.Error("entries not in first-acceptance order")
	}
}

func TestBuildSingleAddress(t *testing.T) {
	report, err := Build(addrA)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(report.Entries))
	}
	e := report.Entries[0]
	if report.Root != e.Leaf {
		t.Errorf("single-address root %s != leaf digest %s", report.Root, e.Leaf)
	}
	if len(e.Proof) != 0 {
		t.Errorf("single-address proof length = %d, want 0", len(e.Proof))
	}
	if report.Height != 0 {
		t.Errorf("height = %d, want 0", report.Height)
	}
}

func TestBuildRejectionsReport(t *testing.T) {
	// One malformed line (39 hex digits), one duplicate, three valid.
	// Line 1 is the header; line 3 has 39 hex digits, line 5 lacks the 0x
	// prefix, line 6 repeats B in a different case. Lines 2, 4, 7 survive.
	input := strings.Join([]string{
		"address,amount",
		addrA + ",10",
		"0x111111111111111111111111111111111111111",
		addrB + ",20",
		strings.ToUpper(addrA[2:]) + ",99",
		"0x" + strings.ToUpper(addrB[2:]) + ",30",
		addrC,
	}, "\n")

	report, err := Build(input)
	if err != nil {
		t.Fatal(err)
	}
	if !report.HeaderSkipped {
		t.Error("header line not skipped")
	}
	if len(report.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(report.Entries))
	}
	if len(report.Rejections) != 3 {
		t.Fatalf("rejections = %d, want 3: %v", len(report.Rejections), report.Rejections)
	}

	byLine := make(map[int]Rejection)
	for _, r := range report.Rejections {
		byLine[r.Line] = r
	}
	if r := byLine[3]; r.Reason != ReasonInvalid {
		t.Errorf("line 3 reason = %q, want %q", r.Reason, ReasonInvalid)
	}
	if r := byLine[5]; r.Reason != ReasonInvalid {
		t.Errorf("line 5 reason = %q, want %q", r.Reason, ReasonInvalid)
	}
	if r := byLine[6]; r.Reason != ReasonDuplicate {
		t.Errorf("line 6 reason = %q, want %q", r.Reason, ReasonDuplicate)
	}

	// First occurrence's metadata is the one kept.
	entry, ok := report.FindEntry(addrB)
	if !ok {
		t.Fatal("addrB not committed")
	}
	if len(entry.Metadata) != 1 || entry.Metadata[0] != "20" {
		t.Errorf("duplicate kept wrong metadata: %v", entry.Metadata)
	}
}

func TestBuildDedupIsCaseInsensitive(t *testing.T) {
	mixed := "0x" + strings.ToUpper(addrA[2:])
	report, err := Build(addrA + "\n" + mixed + "\n" + addrB)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (case variants must collapse)", len(report.Entries))
	}
	if len(report.Rejections) != 1 || report.Rejections[0].Reason != ReasonDuplicate {
		t.Fatalf("rejections = %v, want one duplicate", report.Rejections)
	}
}

func TestBuildEmptyIdentifier(t *testing.T) {
	report, err := Build(",100\n" + addrA)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rejections) != 1 || report.Rejections[0].Reason != ReasonEmpty {
		t.Fatalf("rejections = %v, want one empty", report.Rejections)
	}
	if report.Rejections[0].Line != 1 {
		t.Errorf("empty rejection line = %d, want 1", report.Rejections[0].Line)
	}
}

func TestBuildEmptyInputFatal(t *testing.T) {
	if _, err := Build("  \n\n"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Build(blank) error = %v, want ErrEmptyInput", err)
	}
}

func TestBuildNoSurvivorsFatal(t *testing.T) {
	if _, err := Build("nonsense\n0x123\n"); !errors.Is(err, ErrNoSurvivors) {
		t.Errorf("Build(all invalid) error = %v, want ErrNoSurvivors", err)
	}
}

func TestBuildOrderSensitivity(t *testing.T) {
	// The root commits to survivor order: three addresses reversed regroup
	// the pairs and yield a different root. Two addresses swapped hash into
	// the same sorted pair and yield the same root.
	abc, err := Build(addrA + "\n" + addrB + "\n" + addrC)
	if err != nil {
		t.Fatal(err)
	}
	cba, err := Build(addrC + "\n" + addrB + "\n" + addrA)
	if err != nil {
		t.Fatal(err)
	}
	if abc.Root == cba.Root {
		t.Error("three-address root did not change with input order")
	}

	ab, _ := Build(addrA + "\n" + addrB)
	ba, _ := Build(addrB + "\n" + addrA)
	if ab.Root != ba.Root {
		t.Error("two-address root changed with pair order")
	}
}

func TestBuildTotalWeight(t *testing.T) {
	report, err := Build(addrA + ",100\n" + addrB + ",250,extra\n" + addrC + ",notanumber")
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalWeight == nil {
		t.Fatal("TotalWeight = nil, want 350")
	}
	if report.TotalWeight.Uint64() != 350 {
		t.Errorf("TotalWeight = %s, want 350", report.TotalWeight.Dec())
	}

	unweighted, err := Build(addrA + "\n" + addrB)
	if err != nil {
		t.Fatal(err)
	}
	if unweighted.TotalWeight != nil {
		t.Errorf("TotalWeight = %v, want nil for unweighted input", unweighted.TotalWeight)
	}
}

func TestBuildRecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	_, err := Build(addrA + "\nbogus\n" + addrB, WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	if got := reg.Counter(metrics.RecordsParsed).Value(); got != 3 {
		t.Errorf("parsed counter = %d, want 3", got)
	}
	if got := reg.Counter(metrics.RecordsAccepted).Value(); got != 2 {
		t.Errorf("accepted counter = %d, want 2", got)
	}
	if got := reg.Counter(metrics.RecordsRejected).Value(); got != 1 {
		t.Errorf("rejected counter = %d, want 1", got)
	}
	if got := reg.Gauge(metrics.TreeLeaves).Value(); got != 2 {
		t.Errorf("leaves gauge = %d, want 2", got)
	}
}

func TestFindEntryAnyCase(t *testing.T) {
	report, err := Build(addrA + "\n" + addrB)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.FindEntry("0x" + strings.ToUpper(addrA[2:])); !ok {
		t.Error("FindEntry missed an uppercase query for a committed address")
	}
	if _, ok := report.FindEntry(addrC); ok {
		t.Error("FindEntry matched an uncommitted address")
	}
	if _, ok := report.FindEntry("garbage"); ok {
		t.Error("FindEntry matched a malformed query")
	}
}
