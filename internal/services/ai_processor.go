package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/genai"
)

const (
	responseAdded   = "Ji, %s add kar raha hoon."
	responseBooking = "Zaroor! Table booking ki details bhar dijiye."
	responseBill    = "Ji, aapka order checkout ke liye ready hai."
	responseUnknown = "Maaf kijiye, samjha nahi. Menu se dish ka naam boliye, jaise Butter Chicken ya Dal Tadka."

	// MaxLineQuantity is the most units of one dish a single utterance may add.
	MaxLineQuantity = 99
)

// IntentParser turns one customer utterance into a structured intent.
// history holds earlier turns, oldest first, as "Customer: ..." and
// "Waiter: ..." lines.
type IntentParser interface {
	Parse(ctx context.Context, text string, menu []models.MenuItem, history ...string) (models.Intent, error)
}

var (
	numberWords = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"ek": 1, "do": 2, "teen": 3, "char": 4, "chaar": 4, "panch": 5, "paanch": 5,
	}
	bookingWords  = []string{"book", "booking", "reserve", "reservation", "table"}
	checkoutWords = []string{"checkout", "check out", "place order", "place my order", "bill", "pay", "payment"}

	peoplePattern    = regexp.MustCompile(`\b(\d{1,3})\s*(?:people|persons|person|log|guests|guest|members|pax)\b`)
	tableForPattern  = regexp.MustCompile(`\btable for (\d{1,3})\b`)
	clockTimePattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	bajeTimePattern  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*baje\b`)
	orderTagPattern  = regexp.MustCompile(`\[ORDER:\s*(.*?)\]`)
)

// RuleParser matches dish names and a few booking and checkout keywords.
type RuleParser struct{}

func NewRuleParser() RuleParser { return RuleParser{} }

func (RuleParser) Parse(_ context.Context, text string, menu []models.MenuItem, _ ...string) (models.Intent, error) {
	folded := fold(text)
	tokens := tokenize(folded)
	phrase := " " + strings.Join(tokens, " ") + " "

	if containsAny(phrase, bookingWords) {
		return models.Intent{
			Response: responseBooking,
			Action:   models.ActionNavigateBooking,
			People:   parsePeople(folded),
			Time:     parseTime(folded),
		}, nil
	}
	if lines := matchItems(tokens, menu); len(lines) > 0 {
		return models.Intent{
			Response: addedResponse(lines, menu),
			Action:   models.ActionAddOrder,
			Orders:   lines,
		}, nil
	}
	if containsAny(phrase, checkoutWords) {
		return models.Intent{Response: responseBill, Action: models.ActionCheckout}, nil
	}
	return models.Intent{Response: responseUnknown, Action: models.ActionNone}, nil
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(phrase string, words []string) bool {
	for _, w := range words {
		if strings.Contains(phrase, " "+w+" ") {
			return true
		}
	}
	return false
}

type itemMatch struct {
	pos  int
	line models.IntentLine
}

// matchItems finds dish names in tokens, longest names first so that
// "butter chicken" wins over "chicken". A number right before a name sets
// its quantity.
func matchItems(tokens []string, menu []models.MenuItem) []models.IntentLine {
	type candidate struct {
		id     string
		tokens []string
	}
	cands := make([]candidate, 0, len(menu))
	for _, it := range menu {
		if t := tokenize(fold(it.Name)); len(t) > 0 {
			cands = append(cands, candidate{id: it.ID, tokens: t})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i].tokens) != len(cands[j].tokens) {
			return len(cands[i].tokens) > len(cands[j].tokens)
		}
		return len(strings.Join(cands[i].tokens, " ")) > len(strings.Join(cands[j].tokens, " "))
	})

	used := make([]bool, len(tokens))
	var matches []itemMatch
	for _, c := range cands {
		for i := 0; i+len(c.tokens) <= len(tokens); i++ {
			if !spanMatches(tokens, used, i, c.tokens) {
				continue
			}
			for k := range c.tokens {
				used[i+k] = true
			}
			qty := 1
			if i > 0 && !used[i-1] {
				if n, ok := quantity(tokens[i-1]); ok {
					qty = n
					used[i-1] = true
				}
			}
			matches = append(matches, itemMatch{pos: i, line: models.IntentLine{ItemID: c.id, Quantity: qty}})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	var lines []models.IntentLine
	index := make(map[string]int)
	for _, m := range matches {
		if at, ok := index[m.line.ItemID]; ok {
			lines[at].Quantity += m.line.Quantity
			continue
		}
		index[m.line.ItemID] = len(lines)
		lines = append(lines, m.line)
	}
	return lines
}

func spanMatches(tokens []string, used []bool, at int, name []string) bool {
	for k, want := range name {
		got := tokens[at+k]
		if used[at+k] {
			return false
		}
		if got != want && !(k == len(name)-1 && got == want+"s") {
			return false
		}
	}
	return true
}

func quantity(tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		return n, n > 0 && n <= MaxLineQuantity
	}
	n, ok := numberWords[tok]
	return n, ok
}

func parsePeople(folded string) int {
	for _, p := range []*regexp.Regexp{peoplePattern, tableForPattern} {
		if m := p.FindStringSubmatch(folded); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func parseTime(folded string) string {
	if m := clockTimePattern.FindStringSubmatch(folded); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			return fmt.Sprintf("%d:%s %s", h, minutes(m[2]), strings.ToUpper(m[3]))
		}
	}
	if m := bajeTimePattern.FindStringSubmatch(folded); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 0 && h <= 23 {
			return fmt.Sprintf("%d:%s", h, minutes(m[2]))
		}
	}
	return ""
}

func minutes(m string) string {
	if m == "" {
		return "00"
	}
	return m
}

func addedResponse(lines []models.IntentLine, menu []models.MenuItem) string {
	names := make(map[string]string, len(menu))
	for _, it := range menu {
		names[it.ID] = it.Name
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%d %s", l.Quantity, names[l.ItemID]))
		} else {
			parts = append(parts, names[l.ItemID])
		}
	}
	return fmt.Sprintf(responseAdded, strings.Join(parts, ", "))
}

// RemoteParser asks the text-generation model for the intent and falls back
// to another parser whenever the model is unavailable or its answer cannot
// be used.
type RemoteParser struct {
	gen      genai.Generator
	fallback IntentParser
	timeout  time.Duration
	logger   *slog.Logger
}

func NewRemoteParser(gen genai.Generator, fallback IntentParser, timeout time.Duration, logger *slog.Logger) *RemoteParser {
	if fallback == nil {
		fallback = RuleParser{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteParser{gen: gen, fallback: fallback, timeout: timeout, logger: logger}
}

func (p *RemoteParser) Parse(ctx context.Context, text string, menu []models.MenuItem, history ...string) (models.Intent, error) {
	if !genai.Available(p.gen) {
		return p.fallback.Parse(ctx, text, menu, history...)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.gen.Generate(callCtx, intentPrompt(text, menu, history))
	if err != nil {
		p.logger.Warn("intent model failed, using rules", "error", err)
		return p.fallback.Parse(ctx, text, menu, history...)
	}
	if intent, ok := decodeIntent(raw, menu); ok {
		return intent, nil
	}

	intent, err := p.fallback.Parse(ctx, text, menu, history...)
	if err != nil {
		return intent, err
	}
	// Plain conversational replies are still worth showing.
	if intent.Action == models.ActionNone {
		if prose := strings.TrimSpace(stripFences(raw)); prose != "" && !strings.ContainsAny(prose, "{}") {
			intent.Response = prose
		}
	}
	return intent, nil
}

func intentPrompt(text string, menu []models.MenuItem, history []string) string {
	var b strings.Builder
	b.WriteString("You are 'Raju', a friendly and respectful waiter at Shourya Wada Dhaba (a family restaurant).\n")
	b.WriteString("Speak Hindi mixed with English (Hinglish) in Roman script. Be humble and polite (\"Sir/Ma'am\").\n")
	b.WriteString("If the customer asks what is special, first ask Veg or Non-Veg, then Rice or Roti/Naan.\n")
	b.WriteString("Keep responses under 25 words.\n\n")
	b.WriteString("Menu (id: name, category, Veg/Non-Veg):\n")
	for _, it := range menu {
		if !it.IsAvailable {
			continue
		}
		kind := "Non-Veg"
		if it.IsVegetarian {
			kind = "Veg"
		}
		fmt.Fprintf(&b, "%s: %s, %s, %s\n", it.ID, it.Name, it.Category, kind)
	}
	b.WriteString("\nReply with one JSON object and nothing else:\n")
	b.WriteString(`{"response": "...", "action": "ADD_ORDER|CHECKOUT|NAVIGATE_BOOKING|NONE", "orders": [{"itemId": "...", "quantity": 1}], "people": 0, "time": ""}`)
	b.WriteString("\nUse ADD_ORDER only for dishes the customer clearly chose.\n\n")
	b.WriteString("Chat History:\n")
	for _, h := range history {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Customer: %s\nWaiter:", text)
	return b.String()
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

type wireIntent struct {
	Response string `json:"response"`
	Action   string `json:"action"`
	Orders   []struct {
		ItemID   string `json:"itemId"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"orders"`
	People          int      `json:"people"`
	Time            string   `json:"time"`
	Recommendations []string `json:"recommendations"`
}

// decodeIntent accepts either the JSON intent or free text carrying
// [ORDER: Item Name] tags.
func decodeIntent(raw string, menu []models.MenuItem) (models.Intent, bool) {
	body := stripFences(raw)

	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		var w wireIntent
		if err := json.Unmarshal([]byte(body[start:end+1]), &w); err != nil {
			return models.Intent{}, false
		}
		action := models.IntentAction(strings.ToUpper(strings.TrimSpace(w.Action)))
		if !action.Valid() {
			return models.Intent{}, false
		}
		intent := models.Intent{
			Response:        strings.TrimSpace(w.Response),
			Action:          action,
			People:          w.People,
			Time:            strings.TrimSpace(w.Time),
			Recommendations: w.Recommendations,
		}
		for _, o := range w.Orders {
			item, ok := findItem(menu, o.ItemID, o.Name)
			if !ok {
				continue
			}
			q := o.Quantity
			if q <= 0 {
				q = 1
			}
			if q > MaxLineQuantity {
				// Nobody orders that many; treat the reply as malformed.
				return models.Intent{}, false
			}
			intent.Orders = append(intent.Orders, models.IntentLine{ItemID: item.ID, Quantity: q})
		}
		if action == models.ActionAddOrder && len(intent.Orders) == 0 {
			return models.Intent{}, false
		}
		if intent.Response == "" {
			intent.Response = defaultResponse(intent, menu)
		}
		return intent, true
	}

	tags := orderTagPattern.FindAllStringSubmatch(body, -1)
	if len(tags) == 0 {
		return models.Intent{}, false
	}
	intent := models.Intent{Action: models.ActionAddOrder}
	for _, t := range tags {
		if item, ok := findItem(menu, "", t[1]); ok {
			intent.Orders = append(intent.Orders, models.IntentLine{ItemID: item.ID, Quantity: 1})
		}
	}
	if len(intent.Orders) == 0 {
		return models.Intent{}, false
	}
	intent.Response = strings.TrimSpace(orderTagPattern.ReplaceAllString(body, ""))
	if intent.Response == "" {
		intent.Response = addedResponse(intent.Orders, menu)
	}
	return intent, true
}

func defaultResponse(intent models.Intent, menu []models.MenuItem) string {
	switch intent.Action {
	case models.ActionAddOrder:
		return addedResponse(intent.Orders, menu)
	case models.ActionCheckout:
		return responseBill
	case models.ActionNavigateBooking:
		return responseBooking
	}
	return responseUnknown
}

// findItem resolves by id, then by exact name, then by the first menu name
// containing the given one.
func findItem(menu []models.MenuItem, id, name string) (models.MenuItem, bool) {
	if id != "" {
		for _, it := range menu {
			if it.ID == id {
				return it, true
			}
		}
	}
	name = fold(strings.TrimSpace(name))
	if name == "" {
		return models.MenuItem{}, false
	}
	for _, it := range menu {
		if fold(it.Name) == name {
			return it, true
		}
	}
	for _, it := range menu {
		if strings.Contains(fold(it.Name), name) {
			return it, true
		}
	}
	return models.MenuItem{}, false
}
