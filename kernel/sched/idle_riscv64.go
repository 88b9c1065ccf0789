package sched

// IdleEntry is the never-returning wfi loop the idle process runs when no
// other process is ready (spec §9's "the ready queue must never truly run
// dry" resolution: an idle process is always in the rotation, so Tick
// never has to special-case an empty queue after Bootstrap).
func IdleEntry()

// IdleEntryAddr returns IdleEntry's resident address, for seeding a
// process.NewKernel trap frame with it as the entry point.
func IdleEntryAddr() uintptr
