// Package artifact locates the files a bundle's tasks reference.
//
// An Index lists every candidate file under an export root, skipping the
// resources directory and hidden directories. A Locator resolves one
// reference at a time:
//
//   - relative references are checked against the referencing YAML file;
//   - workspace paths are matched by their longest suffix of path segments,
//     notebooks also by stem since the workspace drops their extension;
//   - wheels are matched by basename, preferring libs/;
//   - anything still missing is fetched through a Fetcher, retrying once
//     with the fallback credential when the primary one is rejected.
//
// Results are cached per source path so every reference to the same
// artifact yields the same Record.
package artifact
