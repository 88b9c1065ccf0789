package sbi

func init() { callFn = call }

// call is implemented in sbi_riscv64.s: it issues an ecall with eid/fid in
// a7/a6 and arg0/arg1 in a0/a1, returning SBI's (error, value) pair from
// the same two registers on return.
func call(eid, fid, arg0, arg1 uint64) (err, value uint64)
