package config

import "os"

// Field names as the Firebase web console exports them. Validation reports
// missing fields by these names, in this order.
const (
	FieldAPIKey            = "apiKey"
	FieldAuthDomain        = "authDomain"
	FieldDatabaseURL       = "databaseURL"
	FieldProjectID         = "projectId"
	FieldStorageBucket     = "storageBucket"
	FieldMessagingSenderID = "messagingSenderId"
	FieldAppID             = "appId"
	FieldMeasurementID     = "measurementId"
)

const missingMask = "(missing)"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type field struct {
	name   string
	envKey string
	get    func(Record) string
	set    func(*Record, string)
}

var fields = []field{
	{FieldAPIKey, "FIREBASE_API_KEY", func(r Record) string { return r.APIKey }, func(r *Record, v string) { r.APIKey = v }},
	{FieldAuthDomain, "FIREBASE_AUTH_DOMAIN", func(r Record) string { return r.AuthDomain }, func(r *Record, v string) { r.AuthDomain = v }},
	{FieldDatabaseURL, "FIREBASE_DATABASE_URL", func(r Record) string { return r.DatabaseURL }, func(r *Record, v string) { r.DatabaseURL = v }},
	{FieldProjectID, "FIREBASE_PROJECT_ID", func(r Record) string { return r.ProjectID }, func(r *Record, v string) { r.ProjectID = v }},
	{FieldStorageBucket, "FIREBASE_STORAGE_BUCKET", func(r Record) string { return r.StorageBucket }, func(r *Record, v string) { r.StorageBucket = v }},
	{FieldMessagingSenderID, "FIREBASE_MESSAGING_SENDER_ID", func(r Record) string { return r.MessagingSenderID }, func(r *Record, v string) { r.MessagingSenderID = v }},
	{FieldAppID, "FIREBASE_APP_ID", func(r Record) string { return r.AppID }, func(r *Record, v string) { r.AppID = v }},
	{FieldMeasurementID, "FIREBASE_MEASUREMENT_ID", func(r Record) string { return r.MeasurementID }, func(r *Record, v string) { r.MeasurementID = v }},
}

// Record is the set of deployment parameters needed to address the Firebase
// project. It is built once at startup and passed around by value.
type Record struct {
	APIKey            string
	AuthDomain        string
	DatabaseURL       string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
	MeasurementID     string
}

// Validation is the outcome of Record.Validate.
type Validation struct {
	Missing []string
	Valid   bool
}

// FromEnv reads the record from the process environment.
func FromEnv() Record {
	return Load(os.LookupEnv)
}

// Load builds a record from lookup. Values are kept verbatim; an unset
// variable reads as the empty string.
func Load(lookup LookupFunc) Record {
	rec := Record{}
	for _, f := range fields {
		v, _ := lookup(f.envKey)
		f.set(&rec, v)
	}
	return rec
}

// Validate never fails. Absent fields are listed in declaration order.
func (r Record) Validate() Validation {
	missing := []string{}
	for _, f := range fields {
		if f.get(r) == "" {
			missing = append(missing, f.name)
		}
	}
	return Validation{Missing: missing, Valid: len(missing) == 0}
}

// Redacted returns a copy whose api key is masked, suitable for logs.
func (r Record) Redacted() Record {
	r.APIKey = MaskAPIKey(r.APIKey)
	return r
}

// EnvKeys returns the environment variable names in field order.
func EnvKeys() []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.envKey)
	}
	return keys
}

// MaskAPIKey shows at most the last six characters of key.
func MaskAPIKey(key string) string {
	if key == "" {
		return missingMask
	}
	if len(key) > 6 {
		key = key[len(key)-6:]
	}
	return "****" + key
}

type Entry struct {
	Name   string
	EnvKey string
	Value  string
}

// Entries lists the record's fields in declaration order.
func (r Record) Entries() []Entry {
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		out = append(out, Entry{Name: f.name, EnvKey: f.envKey, Value: f.get(r)})
	}
	return out
}
