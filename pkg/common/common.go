package common

// AnalysisRecord is one pre-analyzed brand mention: the products, sentiment,
// keywords and quoted text that an upstream collector extracted from a single
// query or document, plus the competitor names known for that record.
//
// Records are the only input the graph engine consumes. A record whose
// Analysis payload is nil is skipped during graph construction.
type AnalysisRecord struct {
	RecordID        int64           `json:"record_id"`
	Analysis        *RecordAnalysis `json:"analysis"`
	CompetitorNames []string        `json:"competitor_names"`
}

// RecordAnalysis is the extracted payload of a single record. Sentiment
// labels are consumed as-is; the engine performs no classification of its
// own. Quotes may be tagged with the entity they talk about so the graph
// builder can route them to the matching brand or competitor edges.
type RecordAnalysis struct {
	BrandProducts        []string             `json:"brand_products"`
	BrandSentimentLabel  string               `json:"brand_sentiment_label,omitempty"`
	Keywords             []Keyword            `json:"keywords"`
	CompetitorSentiments map[string]Sentiment `json:"competitor_sentiments"`
	Quotes               []Quote              `json:"quotes"`
}

// Keyword is a single topic extracted from a record.
type Keyword struct {
	Keyword string `json:"keyword"`
}

// Sentiment carries a sentiment label (POSITIVE, NEGATIVE or MIXED).
type Sentiment struct {
	Label string `json:"label"`
}

// Quote is a short text excerpt supporting an extracted finding. Entity
// names which brand or competitor the excerpt talks about; it is empty or
// the literal "Brand" for quotes about the tracked brand itself.
type Quote struct {
	Text   string `json:"text"`
	Entity string `json:"entity,omitempty"`
}

// InsightKind distinguishes the three ranked insight queries.
type InsightKind string

const (
	InsightKindOpportunityGap InsightKind = "opportunity_gap"
	InsightKindBattleground   InsightKind = "battleground"
	InsightKindStrength       InsightKind = "strength"
)

// Insight is one ranked, evidenced finding derived from the graph: a
// competitive gap, a contested topic, or a competitor stronghold.
type Insight struct {
	Kind     InsightKind `json:"kind"`
	Topic    string      `json:"topic"`
	Score    float64     `json:"score"`
	Evidence []string    `json:"evidence"`
	Context  string      `json:"context"`
}

// QuadrantEntry places one topic on the sentiment/strength quadrant.
// Sentiment is in [-100,100], strength in [0,100]; Narrative is the topic's
// community label ("General" when the topic was not assigned a community).
type QuadrantEntry struct {
	Topic     string `json:"topic"`
	Sentiment int    `json:"sentiment"`
	Strength  int    `json:"strength"`
	Narrative string `json:"narrative"`
}

// InsightReport is the persisted output of one analytical run over a
// project's records: per-competitor gaps and strongholds, per-competitor
// battlegrounds against the brand, and the full keyword quadrant.
type InsightReport struct {
	BrandName       string               `json:"brand_name"`
	OpportunityGaps map[string][]Insight `json:"opportunity_gaps"`
	Battlegrounds   map[string][]Insight `json:"battlegrounds"`
	Strongholds     map[string][]Insight `json:"strongholds"`
	Quadrant        []QuadrantEntry      `json:"quadrant"`
	RecordCount     int                  `json:"record_count"`
}
