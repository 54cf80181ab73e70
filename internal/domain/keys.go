package domain

// KeyPrefix namespaces every key this service touches in the content store.
const KeyPrefix = "adx:"
