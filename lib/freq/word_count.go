package freq

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/benz9527/xbst/lib/kv"
)

// WordCount counts the lower-cased, whitespace separated words of
// input into ht and returns how many words were seen.
func WordCount(ht *kv.HashTable[int], input string) int {
	if ht == nil {
		return 0
	}
	words := strings.Fields(input)
	for _, word := range words {
		word = strings.ToLower(word)
		if counter := ht.Get(word); counter != nil {
			*counter++
			continue
		}
		ht.Insert(word, 1)
	}
	return len(words)
}

type WordFrequency struct {
	Word  string
	Count int
}

// WordFrequencies lists the counters by descending count, ties
// by word.
func WordFrequencies(ht *kv.HashTable[int]) []WordFrequency {
	freqs := lo.FilterMap(ht.Keys(), func(word string, _ int) (WordFrequency, bool) {
		counter := ht.Get(word)
		if counter == nil {
			return WordFrequency{}, false
		}
		return WordFrequency{Word: word, Count: *counter}, true
	})
	slices.SortFunc(freqs, func(a, b WordFrequency) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Word, b.Word)
	})
	return freqs
}
