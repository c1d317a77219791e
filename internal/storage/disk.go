package storage

import (
	"os"
)

// SizeBytes returns the on-disk size of the database including its WAL and shared-memory
// files. Side files that do not exist contribute 0.
func (s *SQLiteStorage) SizeBytes() (int64, error) {
	return fileSizes(s.path, s.path+"-wal", s.path+"-shm")
}

func fileSizes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
