// Package extract turns the rendered markup of a wordbook card page into
// word entries.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/wordbook/internal/types"
)

const (
	sectionSelector = "div#section_word_card"
	cardSelector    = "div.inner_card"
)

// Extractor parses wordbook card pages. It holds no state between calls,
// so the same markup always yields the same entries.
type Extractor struct{}

// New creates an Extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract returns one entry per word card in markup, in page order.
// A page without the card section or without cards yields no entries and no error.
func (e *Extractor) Extract(markup string) ([]types.WordEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	section := doc.Find(sectionSelector).First()
	if section.Length() == 0 {
		return nil, nil
	}

	cards := section.Find(cardSelector)
	entries := make([]types.WordEntry, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		entries = append(entries, parseCard(card))
	})
	return entries, nil
}

// ExtractPage wraps Extract for the browser page number it was read from.
func (e *Extractor) ExtractPage(page int, markup string) (types.PageBatch, error) {
	entries, err := e.Extract(markup)
	if err != nil {
		return types.PageBatch{Page: page}, fmt.Errorf("page %d: %w", page, err)
	}
	return types.PageBatch{Page: page, Entries: entries}, nil
}

func parseCard(card *goquery.Selection) types.WordEntry {
	var entry types.WordEntry

	entry.Reading, entry.Script = parseHeadword(card)

	pos := make(map[string]struct{})
	card.Find("div.wrap_mean").First().
		Find("ul.list_mean > li.item_mean").
		Each(func(_ int, item *goquery.Selection) {
			parseMeaning(item, pos, &entry)
		})

	entry.PartsOfSpeech = sortedKeys(pos)
	entry.Note = parseNote(card)
	return entry
}

func parseHeadword(card *goquery.Selection) (reading, script string) {
	title := card.Find("div.item_word").First().Find("a.title").First()
	if title.Length() == 0 {
		return "", ""
	}

	raw := strings.ReplaceAll(nodeText(title, " "), "-", "")
	if strings.Contains(raw, "[") && strings.Contains(raw, "]") {
		head, rest, _ := strings.Cut(raw, "[")
		return strings.TrimSpace(head), strings.TrimSpace(strings.ReplaceAll(rest, "]", ""))
	}

	reading = strings.TrimSpace(raw)
	return reading, reading
}

func parseMeaning(item *goquery.Selection, pos map[string]struct{}, entry *types.WordEntry) {
	desc := item.Find("div.mean_desc").First()
	if desc.Length() > 0 {
		if tag := nodeText(desc.Find("em.part_speech").First(), ""); tag != "" {
			pos[tag] = struct{}{}
		}

		body := desc.Find("p.cont").First()
		if body.Length() == 0 {
			body = desc
		}
		if def := definitionText(body); def != "" {
			entry.Definitions = append(entry.Definitions, def)
		}
	}

	item.Find("ul.example").First().
		Find("li.item_example").
		Each(func(_ int, ex *goquery.Selection) {
			origin := ex.Find("p.origin").First()
			translate := ex.Find("p.translate").First()
			if origin.Length() == 0 || translate.Length() == 0 {
				return
			}
			entry.Examples = append(entry.Examples, types.Example{
				Source:      nodeText(origin, ""),
				Translation: nodeText(translate, ""),
			})
		})
}

// definitionText reads the definition prose without the part-of-speech tag
// and the enumeration marker. The source selection is left untouched.
func definitionText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("em.part_speech").Remove()
	clone.Find("span.num").Remove()
	return strings.TrimSpace(nodeText(clone, ""))
}

func parseNote(card *goquery.Selection) string {
	memo := card.Find("div.wrap_memo").First()
	if memo.Length() == 0 {
		return ""
	}

	style, _ := memo.Attr("style")
	if hiddenStyle(style) {
		return ""
	}
	if !memo.HasClass("view") && !blockStyle(style) && strings.TrimSpace(style) != "" {
		return ""
	}

	if text := nodeText(memo.Find("div._temp_memo").First(), ""); text != "" {
		return text
	}
	return nodeText(memo.Find("textarea._memo_area").First(), "")
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
