package artifacts

// Store persists generated image payloads and returns a reference the rest
// of the pipeline can carry on the post record.
type Store interface {
	Save(filename string, data []byte) (string, error)
	Read(ref string) ([]byte, error)
}
