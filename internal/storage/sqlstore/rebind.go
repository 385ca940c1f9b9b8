package sqlstore

import "strconv"

// rebind rewrites ? placeholders to $1..$n for postgres. Query text in this
// package never carries a literal question mark, so no quote tracking is
// needed.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebindPositional(query)
}

func rebindPositional(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out = append(out, query[i])
			continue
		}
		n++
		out = append(out, '$')
		out = strconv.AppendInt(out, int64(n), 10)
	}
	return string(out)
}
