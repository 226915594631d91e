package enums

// MediaType discriminates which catalog collection a media reference
// points to. Reviews and favorites store it next to the media id.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTVShow MediaType = "tv"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTVShow
}

func ParseMediaType(raw string) (MediaType, bool) {
	switch MediaType(raw) {
	case MediaTypeMovie:
		return MediaTypeMovie, true
	case MediaTypeTVShow:
		return MediaTypeTVShow, true
	default:
		return "", false
	}
}
