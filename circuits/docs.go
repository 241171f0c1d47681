package circuits

// The circuits package contains the programs consumed by the artifact
// pipeline. A program is the compiled form of a package: its name, the
// backend and constraint language it was built for, the ABI of its inputs
// and the backend specific bytecode.
//
// For the gnark backend the bytecode is an Envelope holding the constraint
// system and the groth16 verifying key of a BN254 circuit:
//
// +-----------+      Build       +-----------+     Prove      +-----------+
// |  gnark    | ---------------> |  Program  | -------------> |   proof   |
// |  circuit  |  compile, setup  |  + ABI    |   assignment   |  (binary) |
// +-----------+                  +-----------+                +-----------+
//                                      |
//                                      v
//                             materialize artifacts
//                        (proof and vk as fields, vk hash)
//
// Programs of remote packages are downloaded as artifacts, identified and
// checked by the sha256 hash of their content, and kept in a local cache
// directory (see BaseDir).
