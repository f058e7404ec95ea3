/*
Package daotest provides helpers for writing tests. It creates unique
addresses and sequence encoded identifiers, and checks that codec records
match their protobuf schema.
*/
package daotest
