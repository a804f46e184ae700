// Package manifest defines package build options and the manifest written
// into every course package: the coursepack JSON manifest and the SCORM 1.2
// imsmanifest.xml derived from it.
package manifest
