// Package errs defines the application's error values.
//
// Every failure that reaches the HTTP layer is one of three shapes:
//   - AppError: an operational error raised on purpose by application code
//     (validation, not found, conflict, ...). Safe to describe to callers.
//   - CastError: a client-supplied value that could not be converted to the
//     expected type. Reclassified into a 400 AppError in production.
//   - UnknownError: anything else (defects, driver or framework errors).
//     Its message and stack never leave the process in production.
//
// Classify turns any error into one of these shapes so the terminal error
// handler can switch on the type instead of probing optional fields.
package errs
