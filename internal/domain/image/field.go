package image

// Kind is the value type a field is compared as.
type Kind uint8

const (
	// KindLiteral fields match by string equality, wildcard or edit distance.
	KindLiteral Kind = iota + 1
	// KindNumber fields support range comparisons over float64.
	KindNumber
	// KindDate fields support range comparisons over timestamps.
	KindDate
)

// Field enumerates the record attributes a query term can address.
type Field uint8

// Known fields.
const (
	FieldTags Field = iota + 1
	FieldID
	FieldWidth
	FieldHeight
	FieldAspectRatio
	FieldCommentCount
	FieldScore
	FieldUpvotes
	FieldDownvotes
	FieldFaves
	FieldTagCount
	FieldCreatedAt
	FieldSHA512Hash
	FieldOrigSHA512Hash
	FieldUploader
	FieldSourceURL
	FieldDescription
)

var fieldNames = map[Field]string{
	FieldTags:           "tags",
	FieldID:             "id",
	FieldWidth:          "width",
	FieldHeight:         "height",
	FieldAspectRatio:    "aspect_ratio",
	FieldCommentCount:   "comment_count",
	FieldScore:          "score",
	FieldUpvotes:        "upvotes",
	FieldDownvotes:      "downvotes",
	FieldFaves:          "faves",
	FieldTagCount:       "tag_count",
	FieldCreatedAt:      "created_at",
	FieldSHA512Hash:     "sha512_hash",
	FieldOrigSHA512Hash: "orig_sha512_hash",
	FieldUploader:       "uploader",
	FieldSourceURL:      "source_url",
	FieldDescription:    "description",
}

var (
	numberFields = fieldSet(
		FieldID, FieldWidth, FieldHeight, FieldAspectRatio, FieldCommentCount,
		FieldScore, FieldUpvotes, FieldDownvotes, FieldFaves, FieldTagCount,
	)
	dateFields = fieldSet(FieldCreatedAt)
	// score is listed as a literal too, but range parsing claims it first.
	literalFields = fieldSet(
		FieldTags, FieldOrigSHA512Hash, FieldSHA512Hash,
		FieldScore, FieldUploader, FieldSourceURL, FieldDescription,
	)
)

func fieldSet(fields ...Field) map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[fieldNames[f]] = f
	}
	return m
}

// String returns the query-language name of the field.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// NumberField resolves a numeric range field by name.
func NumberField(name string) (Field, bool) {
	f, ok := numberFields[name]
	return f, ok
}

// DateField resolves a date range field by name.
func DateField(name string) (Field, bool) {
	f, ok := dateFields[name]
	return f, ok
}

// LiteralField resolves a literal field by name.
func LiteralField(name string) (Field, bool) {
	f, ok := literalFields[name]
	return f, ok
}
