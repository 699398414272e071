// Package voteengine implements up/down voting on arbitrary document-store
// entities ("votees") inside the engagement context.
//
// Every vote transition is one conditional find-and-modify against the
// votee's document, so concurrent or repeated requests can never double
// count. Votees are either top-level documents or elements embedded in a
// parent document's array; the storage topology is fixed per votee kind at
// registration. Business rules live in domain/application layers and the
// document store sits behind ports with memory, MongoDB and Postgres
// adapters.
package voteengine
