package measurements

// Bound on bulk insert batches and IN (...) lists; SQLite caps bound parameters.
const batchSize = 500

func chunks[T any](xs []T, n int) [][]T {
	if len(xs) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(xs)+n-1)/n)
	for start := 0; start < len(xs); start += n {
		end := start + n
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[start:end])
	}
	return out
}
