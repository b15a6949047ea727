package o3d

import "errors"

var (
	// ErrUnsupportedVersion marks a header version outside the known
	// range, or an encode request a version cannot express.
	ErrUnsupportedVersion = errors.New("o3d: unsupported format version")

	// ErrMalformedGeometry marks structural inconsistencies: bad
	// signature, unknown section tags, index out of range, count
	// overflow.
	ErrMalformedGeometry = errors.New("o3d: malformed geometry")

	// ErrDecryptionIntegrity marks an encrypted payload whose decrypted
	// bytes fail the structural sanity check, which usually means the
	// seed policy does not match the file.
	ErrDecryptionIntegrity = errors.New("o3d: decrypted payload failed integrity check")
)
