// Package task implements the state-machine runtime a compiler front end
// targets when lowering structured control flow (try/catch/finally,
// sequential awaits, switch dispatch) into a flat, resumable step function.
//
// Runtime owns the per-invocation State and unwind stack and exposes the
// entry points a compiled step function calls: Start, GoTo, ThenTo,
// ThenToWithErr, Callback, the PushCleanupStep/PushCleanupAction/
// PushErrorStep/PushPhi family, Retry, and JumpTable/JumpToCase. The
// compiler itself is an external collaborator and is not part of this
// package.
package task
