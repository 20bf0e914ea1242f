/*
The sync package installs locally written hackmud scripts into the game's
per-user script directories.

There are two kinds of files:
1) Scripts -- `.js` files on the user's machine, found by expanding glob
   patterns. A script named `<name>.js` is installed for every user. A script
   named `<name>.<user>.js` is only installed for `<user>`, and takes
   precedence over `<name>.js` for that user.
2) Keys -- `<user>.key` files in the hackmud directory. Each key registers a
   user whose scripts live in `<hackmud directory>/<user>/scripts`.

A sync is a single pass: every user gets a copy of each script resolved for
them, optionally after their scripts directory is emptied. Nothing is tracked
between syncs, so re-running a sync is always safe.
*/
package sync
