// Package model learns a single global threshold per channel from annotated
// images and applies it to unseen ones.
//
// # Training
//
// Train scores every threshold of every channel against ground-truth masks
// with the IoU evaluator and keeps the best channel and threshold. The
// model also records the channel's intensity mass function (PMF) and its
// threshold mass function (TMF): the foreground fraction at each threshold.
//
// # Prediction
//
// Predict ranks stored models by the cosine similarity between their PMF
// and the PMF of the new image's channel of the same kind. A close enough
// match is applied directly; otherwise the mean threshold of the top
// candidates is reported with ErrUntrusted.
//
// # Persistence
//
// Models are stored as versioned YAML documents. Unknown versions are
// rejected on load.
package model
