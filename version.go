package smalltalk

// Version is the module version reported in traces and by the CLI.
const Version = "0.1.0"
