package metafield

// ExtractImage returns the image descriptor of a media reference, or nil when
// the reference carries no image URL.
func ExtractImage(r Reference) *Image {
	if r.Image == nil || r.Image.URL == "" {
		return nil
	}
	img := *r.Image
	return &img
}
