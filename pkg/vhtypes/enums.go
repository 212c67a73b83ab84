// Package vhtypes holds the small set of enumerations shared by the
// pipeline (pkg/vhlib) and the persistence layer (pkg/store) so neither
// package needs to import the other just to agree on a type.
package vhtypes

// FileType classifies a file by the streams the parser found inside it.
type FileType int

const (
	// TypeNull is assigned when the parser found no audio or video stream.
	TypeNull FileType = iota
	TypeAudio
	TypeVideo
	TypeImage
	// TypePlaylist names playlist files; the parser's stream-based type
	// assignment never yields it (it yields Null, Audio, Video or Image).
	TypePlaylist
)

func (t FileType) String() string {
	switch t {
	case TypeAudio:
		return "audio"
	case TypeVideo:
		return "video"
	case TypeImage:
		return "image"
	case TypePlaylist:
		return "playlist"
	default:
		return "null"
	}
}

// Group names the semantic bucket a metadata key/value pair belongs to.
type Group int

const (
	GroupMiscellaneous Group = iota
	GroupClassification
	GroupCommercial
	GroupContact
	GroupEntities
	GroupIdentifier
	GroupLegal
	GroupMusical
	GroupOrganisational
	GroupPersonal
	GroupSpacial
	GroupTechnical
	GroupTemporal
	GroupTitles
)

var groupNames = map[Group]string{
	GroupMiscellaneous:  "miscellaneous",
	GroupClassification: "classification",
	GroupCommercial:     "commercial",
	GroupContact:        "contact",
	GroupEntities:       "entities",
	GroupIdentifier:     "identifier",
	GroupLegal:          "legal",
	GroupMusical:        "musical",
	GroupOrganisational: "organisational",
	GroupPersonal:       "personal",
	GroupSpacial:        "spacial",
	GroupTechnical:      "technical",
	GroupTemporal:       "temporal",
	GroupTitles:         "titles",
}

func (g Group) String() string {
	if n, ok := groupNames[g]; ok {
		return n
	}
	return "miscellaneous"
}

// Language is a fixed enumeration of metadata value languages.
type Language int

const (
	LangUndefined Language = iota
	LangEN
	LangFR
	LangDE
	LangES
	LangIT
)

var langNames = map[Language]string{
	LangUndefined: "",
	LangEN:        "en",
	LangFR:        "fr",
	LangDE:        "de",
	LangES:        "es",
	LangIT:        "it",
}

func (l Language) String() string { return langNames[l] }

// Interrupted is the tri-state crash-recovery flag carried on every File row.
type Interrupted int8

const (
	// InterruptedDone means the file finished a full pass cleanly.
	InterruptedDone Interrupted = 0
	// InterruptedStarted marks a file that began a pass and has not yet been
	// re-flagged by the end-of-loop sweep; surviving across a crash it tells
	// the next run the file must be re-entered into the pipeline.
	InterruptedStarted Interrupted = 1
	// InterruptedInFlight is the transient value held while a file is actively
	// moving through the pipeline during the current loop.
	InterruptedInFlight Interrupted = -1
)
