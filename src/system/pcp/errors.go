package pcp

import "fmt"

// CodingError is the panic value raised when a caller breaks the contract of
// the index, e.g. by removing a prim index that was never added.
type CodingError struct {
	Op  string
	Msg string
}

func (e *CodingError) Error() string {
	return "pcp: coding error in " + e.Op + ": " + e.Msg
}

func (idx *Index) codingError(op, format string, params ...interface{}) {
	err := &CodingError{Op: op, Msg: fmt.Sprintf(format, params...)}
	idx.log.Fatal(err.Error())
	panic(err)
}
