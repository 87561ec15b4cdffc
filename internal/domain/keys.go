package domain

// KeyPrefix namespaces every key vendorscout writes to the store.
const KeyPrefix = "vendorscout:"
