package domain

// KeyPrefix is the namespace prefix for every key written to the store.
var KeyPrefix = "markstash:"
