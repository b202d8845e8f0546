package models

// WordCloudEntry is a derived frequency count for one case-folded word.
type WordCloudEntry struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}
