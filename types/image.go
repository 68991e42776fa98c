package types

// ImageSize is the pixel size of a generated image.
type ImageSize string

const (
	ImageSize256x256   ImageSize = "256x256"
	ImageSize512x512   ImageSize = "512x512"
	ImageSize1024x1024 ImageSize = "1024x1024"
	ImageSize1792x1024 ImageSize = "1792x1024"
	ImageSize1024x1792 ImageSize = "1024x1792"
)

// DefaultImageSize is the server default.
const DefaultImageSize = ImageSize1024x1024

var imageSizeValues = []ImageSize{ImageSize256x256, ImageSize512x512, ImageSize1024x1024, ImageSize1792x1024, ImageSize1024x1792}

// Valid reports whether v is a known ImageSize.
func (v ImageSize) Valid() bool { return member(imageSizeValues)(v) }

// String returns the wire string.
func (v ImageSize) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ImageSize) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ImageSize", ImageSize.Valid)
}

// ParseImageSize converts a wire string into a ImageSize.
func ParseImageSize(s string) (ImageSize, error) { return parseEnum(s, "ImageSize", ImageSize.Valid) }

// ImageQuality selects detail level for dall-e-3.
type ImageQuality string

const (
	ImageQualityStandard ImageQuality = "standard"
	ImageQualityHD       ImageQuality = "hd"
)

// DefaultImageQuality is the server default.
const DefaultImageQuality = ImageQualityStandard

var imageQualityValues = []ImageQuality{ImageQualityStandard, ImageQualityHD}

// Valid reports whether v is a known ImageQuality.
func (v ImageQuality) Valid() bool { return member(imageQualityValues)(v) }

// String returns the wire string.
func (v ImageQuality) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ImageQuality) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ImageQuality", ImageQuality.Valid)
}

// ParseImageQuality converts a wire string into a ImageQuality.
func ParseImageQuality(s string) (ImageQuality, error) { return parseEnum(s, "ImageQuality", ImageQuality.Valid) }

// ImageStyle selects the rendering style for dall-e-3.
type ImageStyle string

const (
	ImageStyleVivid   ImageStyle = "vivid"
	ImageStyleNatural ImageStyle = "natural"
)

// DefaultImageStyle is the server default.
const DefaultImageStyle = ImageStyleVivid

var imageStyleValues = []ImageStyle{ImageStyleVivid, ImageStyleNatural}

// Valid reports whether v is a known ImageStyle.
func (v ImageStyle) Valid() bool { return member(imageStyleValues)(v) }

// String returns the wire string.
func (v ImageStyle) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ImageStyle) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ImageStyle", ImageStyle.Valid)
}

// ParseImageStyle converts a wire string into a ImageStyle.
func ParseImageStyle(s string) (ImageStyle, error) { return parseEnum(s, "ImageStyle", ImageStyle.Valid) }

// ImageResponseFormat selects how generated images are returned.
type ImageResponseFormat string

const (
	ImageResponseURL     ImageResponseFormat = "url"
	ImageResponseB64JSON ImageResponseFormat = "b64_json"
)

// DefaultImageResponseFormat is the server default.
const DefaultImageResponseFormat = ImageResponseURL

var imageResponseFormatValues = []ImageResponseFormat{ImageResponseURL, ImageResponseB64JSON}

// Valid reports whether v is a known ImageResponseFormat.
func (v ImageResponseFormat) Valid() bool { return member(imageResponseFormatValues)(v) }

// String returns the wire string.
func (v ImageResponseFormat) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *ImageResponseFormat) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "ImageResponseFormat", ImageResponseFormat.Valid)
}

// ParseImageResponseFormat converts a wire string into a ImageResponseFormat.
func ParseImageResponseFormat(s string) (ImageResponseFormat, error) { return parseEnum(s, "ImageResponseFormat", ImageResponseFormat.Valid) }

