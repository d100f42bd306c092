// Package categorizer assigns accounting categories to parsed
// transactions through a priority-ordered rule cascade: exact keyword
// match, regex patterns, optional TF-IDF similarity, amount heuristics,
// then a per-direction default. Each stage short-circuits on success.
//
// Categorization is a pure function of the transaction and the loaded
// category configuration. The engine keeps an audit log of decisions
// for feedback review, but the log never feeds back into matching.
package categorizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"bank-statement-ledger/internal/models"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/shopspring/decimal"
)

// Categorization methods, recorded on every decision.
const (
	MethodKeyword     = "keyword"
	MethodPattern     = "pattern"
	MethodSimilarity  = "similarity"
	MethodHeuristic   = "heuristic"
	MethodDefault     = "default"
	MethodStatistical = "statistical"
)

// Confidence constants. Scoring is independent of the stage that
// matched: it re-examines how the description relates to the winning
// category's keywords.
const (
	confidenceWholeWord = 0.9
	confidenceSubstring = 0.7
	confidenceDefault   = 0.3
	confidenceOther     = 0.5
)

// Result is the outcome of categorizing one transaction.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Decision is one audit-log record.
type Decision struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Method      string  `json:"method"`
}

// strategy is one cascade stage. It returns the matched category name
// and true, or false to fall through to the next stage.
type strategy func(tx *models.Transaction, description string) (string, string, bool)

// Engine runs the categorization cascade.
type Engine struct {
	config     *Config
	classifier *Classifier
	logger     logger.Logger

	// Derived structures, rebuilt whenever the category set changes.
	mu         sync.RWMutex
	categories []*models.Category
	byName     map[string]*models.Category
	wordIndex  map[string][]*regexp.Regexp
	patterns   map[string][]*regexp.Regexp
	simIndex   *similarityIndex
	cascade    []strategy

	auditMu  sync.Mutex
	auditLog []Decision
}

// NewEngine creates a categorization engine. A nil config uses the
// built-in category table.
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:     config,
		classifier: NewClassifier(),
		logger:     logger.GetGlobalLogger().WithComponent("categorizer"),
	}
	if err := e.rebuild(config.Categories); err != nil {
		return nil, err
	}

	e.cascade = []strategy{
		e.matchKeywords,
		e.matchPatterns,
		e.matchSimilarity,
		e.matchHeuristics,
		e.matchDefault,
	}

	return e, nil
}

// rebuild recompiles the derived keyword index, pattern set and
// similarity index from the given category list. Called at construction
// and whenever AddCategory changes the configuration; the derived state
// is replaced wholesale, never mutated while in use.
func (e *Engine) rebuild(categories []*models.Category) error {
	byName := make(map[string]*models.Category, len(categories))
	wordIndex := make(map[string][]*regexp.Regexp, len(categories))
	patterns := make(map[string][]*regexp.Regexp, len(categories))

	var simDocs []string
	var simLabels []string

	for _, category := range categories {
		byName[category.Name] = category

		for _, keyword := range category.Keywords {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
			if err != nil {
				return apperrors.CategorizationError(apperrors.CodeUnknownCategory, category.Name, err)
			}
			wordIndex[category.Name] = append(wordIndex[category.Name], re)
			simDocs = append(simDocs, keyword)
			simLabels = append(simLabels, category.Name)
		}

		for _, pattern := range category.Patterns {
			re, err := regexp.Compile(`(?i)` + pattern)
			if err != nil {
				return apperrors.CategorizationError(apperrors.CodeUnknownCategory, category.Name, err)
			}
			patterns[category.Name] = append(patterns[category.Name], re)
		}
	}

	e.mu.Lock()
	e.categories = categories
	e.byName = byName
	e.wordIndex = wordIndex
	e.patterns = patterns
	e.simIndex = buildSimilarityIndex(simDocs, simLabels)
	e.mu.Unlock()

	return nil
}

// AddCategory registers a custom category and rebuilds the derived
// indexes. The new category appends to declaration order.
func (e *Engine) AddCategory(category *models.Category) error {
	if err := category.Validate(); err != nil {
		return apperrors.CategorizationError(apperrors.CodeUnknownCategory, category.Name, err)
	}

	e.mu.RLock()
	if _, exists := e.byName[category.Name]; exists {
		e.mu.RUnlock()
		return apperrors.CategorizationError(apperrors.CodeUnknownCategory, category.Name, nil).
			WithSuggestion("category already exists")
	}
	updated := append(append([]*models.Category{}, e.categories...), category)
	e.mu.RUnlock()

	e.logger.WithField("category", category.Name).Info("Adding custom category, rebuilding keyword index")
	return e.rebuild(updated)
}

// Category returns the configured category by name.
func (e *Engine) Category(name string) (*models.Category, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.byName[name]
	return c, ok
}

// Categories returns the category list in declaration order.
func (e *Engine) Categories() []*models.Category {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*models.Category{}, e.categories...)
}

// TrainClassifier fits the statistical override on labeled samples.
func (e *Engine) TrainClassifier(samples []Sample) {
	e.classifier.Train(samples)
}

// Categorize runs the cascade for one transaction and returns the
// decision. The transaction itself is not modified.
func (e *Engine) Categorize(tx *models.Transaction) Result {
	description := strings.ToLower(tx.Description)

	e.mu.RLock()
	cascade := e.cascade
	e.mu.RUnlock()

	var category, method string
	for _, stage := range cascade {
		if c, m, ok := stage(tx, description); ok {
			category, method = c, m
			break
		}
	}

	result := Result{
		Category:   category,
		Confidence: e.scoreConfidence(description, category),
		Method:     method,
	}

	// The statistical classifier may override, but only on its own
	// confidence; the rule-based result otherwise stands.
	if e.config.EnableClassifier && e.classifier.IsTrained() {
		if predicted, confidence := e.classifier.Predict(tx.Description); predicted != "" &&
			confidence > e.config.OverrideThreshold {
			if _, known := e.Category(predicted); known {
				result = Result{Category: predicted, Confidence: confidence, Method: MethodStatistical}
			}
		}
	}

	e.auditMu.Lock()
	e.auditLog = append(e.auditLog, Decision{
		Description: tx.Description,
		Category:    result.Category,
		Confidence:  result.Confidence,
		Method:      result.Method,
	})
	e.auditMu.Unlock()

	return result
}

// Apply categorizes the transaction and writes the result onto it.
// This is the single mutation of a Transaction after parsing.
func (e *Engine) Apply(tx *models.Transaction) {
	result := e.Categorize(tx)
	tx.Category = result.Category
	tx.Confidence = result.Confidence
	tx.Method = result.Method
}

// ApplyAll categorizes a batch with bounded parallelism, preserving
// order. Each call is independent, so the fan-out is safe.
func (e *Engine) ApplyAll(transactions []*models.Transaction, workers int) {
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || len(transactions) < 2 {
		for _, tx := range transactions {
			e.Apply(tx)
		}
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan *models.Transaction)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tx := range jobs {
				e.Apply(tx)
			}
		}()
	}
	for _, tx := range transactions {
		jobs <- tx
	}
	close(jobs)
	wg.Wait()
}

// matchKeywords is stage 1: whole-word keyword matching with priority
// selection. All matching categories are collected; the lowest priority
// number wins, declaration order breaking ties.
func (e *Engine) matchKeywords(tx *models.Transaction, description string) (string, string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	type match struct {
		name     string
		priority int
		order    int
	}
	var matches []match

	for order, category := range e.categories {
		for _, re := range e.wordIndex[category.Name] {
			if re.MatchString(description) {
				matches = append(matches, match{category.Name, category.Priority, order})
				break
			}
		}
	}

	if len(matches) == 0 {
		return "", "", false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].order < matches[j].order
	})

	return matches[0].name, MethodKeyword, true
}

// matchPatterns is stage 2: per-category regex patterns in declaration
// order; the first matching category wins.
func (e *Engine) matchPatterns(tx *models.Transaction, description string) (string, string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, category := range e.categories {
		for _, re := range e.patterns[category.Name] {
			if re.MatchString(description) {
				return category.Name, MethodPattern, true
			}
		}
	}
	return "", "", false
}

// matchSimilarity is stage 3: TF-IDF cosine similarity against the
// keyword corpus, accepted only above the configured threshold.
func (e *Engine) matchSimilarity(tx *models.Transaction, description string) (string, string, bool) {
	if !e.config.EnableSimilarity {
		return "", "", false
	}

	e.mu.RLock()
	idx := e.simIndex
	e.mu.RUnlock()
	if idx == nil {
		return "", "", false
	}

	category, score := idx.nearest(description)
	if category == "" || score <= e.config.SimilarityThreshold {
		return "", "", false
	}
	return category, MethodSimilarity, true
}

// Common ATM withdrawal denominations.
var atmDenominations = map[int64]bool{
	500: true, 1000: true, 2000: true, 5000: true, 10000: true, 20000: true,
}

var (
	foodIndicators      = []string{"cafe", "restaurant", "food", "meal", "snack"}
	transportIndicators = []string{"fuel", "petrol", "bus", "taxi", "uber"}

	foodAmountCeiling      = decimal.NewFromInt(1000)
	transportAmountCeiling = decimal.NewFromInt(500)
)

// matchHeuristics is stage 4: amount/keyword combinations that the
// strict stages miss, such as an ATM-adjacent description with a
// common withdrawal denomination.
func (e *Engine) matchHeuristics(tx *models.Transaction, description string) (string, string, bool) {
	rounded := tx.Amount.Round(0)
	if strings.Contains(description, "atm") && rounded.IsInteger() && atmDenominations[rounded.IntPart()] {
		if _, ok := e.Category("cash_withdrawal"); ok {
			return "cash_withdrawal", MethodHeuristic, true
		}
	}

	if tx.IsDebit() && tx.Amount.LessThan(foodAmountCeiling) {
		for _, indicator := range foodIndicators {
			if strings.Contains(description, indicator) {
				if _, ok := e.Category("food_expense"); ok {
					return "food_expense", MethodHeuristic, true
				}
			}
		}
	}

	if tx.IsDebit() && tx.Amount.LessThanOrEqual(transportAmountCeiling) {
		for _, indicator := range transportIndicators {
			if strings.Contains(description, indicator) {
				if _, ok := e.Category("transport_expense"); ok {
					return "transport_expense", MethodHeuristic, true
				}
			}
		}
	}

	return "", "", false
}

// matchDefault is stage 5: the per-direction fallback. It always
// succeeds, so categorization never errors.
func (e *Engine) matchDefault(tx *models.Transaction, description string) (string, string, bool) {
	if tx.IsCredit() {
		return e.config.CreditDefault, MethodDefault, true
	}
	return e.config.DebitDefault, MethodDefault, true
}

// scoreConfidence computes the decision confidence from how the
// description relates to the winning category's keywords, independent
// of which stage matched.
func (e *Engine) scoreConfidence(description, categoryName string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	category, ok := e.byName[categoryName]
	if !ok {
		return confidenceOther
	}

	for _, re := range e.wordIndex[categoryName] {
		if re.MatchString(description) {
			return confidenceWholeWord
		}
	}

	for _, keyword := range category.Keywords {
		if strings.Contains(description, strings.ToLower(keyword)) {
			return confidenceSubstring
		}
	}

	if categoryName == e.config.CreditDefault || categoryName == e.config.DebitDefault {
		return confidenceDefault
	}

	return confidenceOther
}

// AuditLog returns a copy of the decisions made so far.
func (e *Engine) AuditLog() []Decision {
	e.auditMu.Lock()
	defer e.auditMu.Unlock()
	return append([]Decision{}, e.auditLog...)
}

// Stats summarizes categorization results over a batch.
type Stats struct {
	Total              int            `json:"total"`
	Distribution       map[string]int `json:"distribution"`
	AverageConfidence  float64        `json:"average_confidence"`
	LowConfidenceCount int            `json:"low_confidence_count"`
}

// ComputeStats aggregates categorization statistics for categorized
// transactions.
func ComputeStats(transactions []*models.Transaction) *Stats {
	stats := &Stats{Distribution: make(map[string]int)}
	if len(transactions) == 0 {
		return stats
	}

	var sum float64
	for _, tx := range transactions {
		stats.Total++
		stats.Distribution[tx.Category]++
		sum += tx.Confidence
		if tx.Confidence < 0.5 {
			stats.LowConfidenceCount++
		}
	}
	stats.AverageConfidence = sum / float64(stats.Total)
	return stats
}
