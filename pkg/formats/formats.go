// Package formats provides parsers for the engine's asset file formats:
// key-value dictionaries (.mat, .robj), Wavefront OBJ models and glTF 2.0
// models. Parsers return plain data and never touch the GPU.
package formats
