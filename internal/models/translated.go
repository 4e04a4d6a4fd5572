package models

// TranslatedItem is the pipeline's output for one processing attempt. It is
// never persisted; the publisher writes it out and only the external refs
// survive in the ProcessingRecord.
type TranslatedItem struct {
	Title          string
	Description    string
	SEOTitle       string
	SEODescription string
	Slug           string
	Category       string
	ProductType    string
	Tags           []string
	Options        []ItemOption
	Variants       []ItemVariant
	DeliveryDays   string
}
