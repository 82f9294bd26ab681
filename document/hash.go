package document

import (
	"github.com/minio/highwayhash"
)

var key = []byte("cppgen-snapshot-fingerprint-key!")

// Fingerprint hashes document content so a snapshot can be checked against
// the file on disk before an edit is committed.
func Fingerprint(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}
