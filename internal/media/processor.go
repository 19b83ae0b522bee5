package media

// Processor exposes the upload transformations as methods so services
// can declare the subset they need as an interface and stub it in tests.
type Processor struct{}

func (Processor) ResizeImage(src []byte, width, height int) ([]byte, error) {
	return ResizeImage(src, width, height)
}

func (Processor) Duration(data []byte) (int64, error) {
	return Duration(data)
}

func (Processor) TagTitle(data []byte) string {
	return TagTitle(data)
}

func (Processor) CheckAudioFilename(filename string) error {
	return CheckAudioFilename(filename)
}
