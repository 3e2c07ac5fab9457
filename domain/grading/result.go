package grading

// ResultRecord is the verdict for one graded cell. Sheet and Cell are echoed
// exactly as the answer key spells them; Value is the text that was matched,
// which for cells inside an array formula is the anchor's formula.
type ResultRecord struct {
	Sheet  string `json:"sheet" yaml:"sheet"`
	Cell   string `json:"cell" yaml:"cell"`
	Value  string `json:"formula" yaml:"formula"`
	Passed bool   `json:"result" yaml:"result"`
}
