package types

// Version is the canonical project version. The CLI and the generated
// job-card header share this constant.
const Version = "0.4.0"
