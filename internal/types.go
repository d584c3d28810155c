package internal

type PipelineMethod string

const (
	MethodLLM    PipelineMethod = "LLM"
	MethodRegex  PipelineMethod = "REGEX"
	MethodHybrid PipelineMethod = "HYBRID"
)

type MatchStatus string

const (
	MatchOK        MatchStatus = "MATCH_OK"
	PartialMatch   MatchStatus = "PARTIAL_MATCH"
	Mismatch       MatchStatus = "MISMATCH"
	SinglePipeline MatchStatus = "SINGLE_PIPELINE"
	NoneFound      MatchStatus = "NONE_FOUND"
)

type FinalStatus string

const (
	StatusAccepted FinalStatus = "ACCEPTED"
	StatusReview   FinalStatus = "REVIEW"
	StatusRejected FinalStatus = "REJECTED"
)

// PageText is the extracted text of a single PDF page, 0-based.
type PageText struct {
	Page int
	Text string
}

// PageRange is one document region inside a batch PDF, inclusive bounds.
type PageRange struct {
	StartPage int
	EndPage   int
}

type Evidence struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// PipelineResult is the output of one extraction pipeline (A or B) for one
// region. Immutable once produced; an empty PONumbers set means the pipeline
// found nothing or was skipped.
type PipelineResult struct {
	POPrimary     *string        `json:"poPrimary"`
	POSecondary   *string        `json:"poSecondary"`
	PONumbers     []string       `json:"poNumbers"`
	Supplier      *string        `json:"supplier"`
	Confidence    float64        `json:"confidence"`
	Method        PipelineMethod `json:"method"`
	FoundKeywords []string       `json:"foundKeywords"`
	Evidence      []Evidence     `json:"evidence"`
}

// Verdict is the reconciliation outcome for one region. Only the override
// path may change it after initial computation.
type Verdict struct {
	MatchStatus        MatchStatus `json:"matchStatus"`
	DecidedPOPrimary   *string     `json:"decidedPoPrimary"`
	DecidedPOSecondary *string     `json:"decidedPoSecondary"`
	DecidedPONumbers   []string    `json:"decidedPoNumbers"`
	Status             FinalStatus `json:"status"`
	NextAction         string      `json:"nextAction"`
	RejectReason       *string     `json:"rejectReason"`
}

type BatchRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type DocumentRow struct {
	ID        int
	BatchID   int
	DocIndex  int
	PageStart int
	PageEnd   int
}

type RejectRow struct {
	ID          int
	DocumentID  int
	MatchStatus string
	Reason      string
	Resolved    bool
	ResolvedPO  *string
	CreatedAt   string
	UpdatedAt   string
}

// VerdictExportRow flattens one document's A/B results and verdict for the
// xlsx export, ordered by original region order.
type VerdictExportRow struct {
	DocIndex    int
	PageStart   int
	PageEnd     int
	SupplierA   *string
	POPrimaryA  *string
	PONumbersA  []string
	ConfidenceA float64
	MethodA     string
	SupplierB   *string
	POPrimaryB  *string
	PONumbersB  []string
	ConfidenceB float64
	MethodB     string
	MatchStatus string
	DecidedPO   *string
	DecidedSet  []string
	Status      string
	NextAction  string
	Reason      *string
}
