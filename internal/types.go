package internal

// MatchTier records which lookup tier resolved a registry entry. It is
// reporting metadata only and is stripped before the dataset is persisted.
type MatchTier string

const (
	TierManual       MatchTier = "MANUAL"
	TierExactHebrew  MatchTier = "EXACT_HEBREW"
	TierExactEnglish MatchTier = "EXACT_ENGLISH"
	TierGeocoded     MatchTier = "GEOCODED"
)

// RegistryRecord is one settlement row from the government registry.
// Immutable once read; the registry is the source of truth for identity.
type RegistryRecord struct {
	HebrewName   string
	EnglishName  *string
	RegistryCode int
	Population   *int
	District     *string
	Type         *string
}

// GeoRecord is one named, geo-tagged element from the secondary dataset.
type GeoRecord struct {
	ID           int64
	DisplayName  string
	EnglishAlias *string
	Lat          float64
	Lon          float64
}

// ResolvedLocation is a registry entry with coordinates attached. ID is
// the registry code when known, otherwise the geo element id.
type ResolvedLocation struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NameEn     *string   `json:"nameEn,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Population *int      `json:"population,omitempty"`
	District   *string   `json:"district,omitempty"`
	Type       *string   `json:"type,omitempty"`
	MatchTier  MatchTier `json:"-"`
}

// UnmatchedRecord is a registry entry no tier could resolve. Persisted
// between runs so geocoding can resume where it left off.
type UnmatchedRecord struct {
	HebrewName   string  `json:"hebrewName"`
	EnglishName  *string `json:"englishName,omitempty"`
	RegistryCode int     `json:"registryCode"`
}

// Overrides maps a registry Hebrew name to the geo-dataset name it should
// resolve to. Curated by hand, read-only during reconciliation.
type Overrides map[string]string

type GeocodeStatus string

const (
	GeocodeOK            GeocodeStatus = "OK"
	GeocodeNoResult      GeocodeStatus = "NO_RESULT"
	GeocodeQuotaExceeded GeocodeStatus = "QUOTA_EXCEEDED"
	GeocodeError         GeocodeStatus = "ERROR"
)

// GeocodeOutcome classifies a single geocoder response.
type GeocodeOutcome struct {
	Status           GeocodeStatus
	Lat              float64
	Lon              float64
	FormattedAddress string
	Message          string
}

// GeocodeFailure is one gap-filler record that ended in the Failed state.
type GeocodeFailure struct {
	Record UnmatchedRecord `json:"record"`
	Status GeocodeStatus   `json:"status"`
	Reason string          `json:"reason,omitempty"`
}
