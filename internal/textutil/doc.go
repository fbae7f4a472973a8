// Package textutil scores how alike two tags look so unknown tags can be
// matched against a vocabulary.
//
// Tags are fingerprinted as character trigram frequency vectors over the
// lowercased, NFC-normalized tag padded with spaces, and compared by cosine
// similarity. Short or misspelled tags still share most trigrams with the
// intended tag, which makes this a cheap "did you mean" for typos.
package textutil
