package executor

// Compile-time interface satisfaction checks: every executor strategy
// implements Executor, whether directly or via its embedded BaseExecutor.
var (
	_ Executor = (*SimpleExecutor)(nil)
	_ Executor = (*ReuseExecutor)(nil)
	_ Executor = (*BatchExecutor)(nil)
	_ Executor = (*CachingExecutor)(nil)
)
