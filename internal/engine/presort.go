package engine

import "github.com/san-kum/nbodyval/internal/snapshot"

// Presort writes input to output in Z-order. Engines that keep input order
// then share an index order with a reference run on the same file.
func Presort(input, output string, n, width int) error {
	s, err := snapshot.Read(input, n, width)
	if err != nil {
		return err
	}
	sorted, err := s.Permute(snapshot.MortonOrder(s))
	if err != nil {
		return err
	}
	return snapshot.Write(output, sorted, width)
}
