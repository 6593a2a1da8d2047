package data

// Example is one feature vector: an ordered, fixed-length sequence of
// real numbers.
type Example = []float64

// Dataset is an ordered collection of examples. Order carries no meaning
// for the classifier, but each example's index pairs it with its label.
type Dataset = []Example
