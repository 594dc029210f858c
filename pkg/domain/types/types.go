package types

// Version is embedded into the health endpoint and the default User-Agent.
const Version = "0.1.0"
