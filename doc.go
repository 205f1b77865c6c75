/*
Command skymask builds, reads, and uses mangle-style polygon masks of the sky.

Contents

  Program overview
  Command line usage
  Configuration file
  Region file
  Mask file format
  Algorithm outline


Program overview

A region of the sky is described as a union of polygons, each polygon an
intersection of spherical caps.  Skymask reads a region description,
writes it as a mangle polygon file, and then either generates random points
uniformly distributed inside the region or classifies given points as inside
or outside.

Sample run:

Two caps of radius 5 degrees, at RA 76, Dec 36 and RA 75, Dec 35, combined
as one polygon describe the intersection of the two caps.  In region file
lens.yaml,

  polygons:
    - caps:
        - {ra: 76, dec: 36, radius: 5}
        - {ra: 75, dec: 35, radius: 5}

Then "skymask -n 3 -b 68.5,82.5,28.5,42.5 lens.yaml" writes lens.ply,

  1 polygons
  polygon 1 ( 2 caps, 1 weight, 0 pixel, 0 str):
   0.195718925  0.784985732  0.587785252  0.003805302  0.212012150 ...

and prints three random points inside the intersection.  Listing the two caps
as separate polygons instead gives the union of the caps.  Flipping a cap,
with "flip: true", selects everything outside the cap.


Command line usage

  Usage: skymask [options] <region.yaml>   write mask, then sample or classify
         skymask [options] -m <mask-file>  sample or classify with existing mask
         skymask -k <points> -w <glob>     list sweep files holding points
         skymask -k <points> -x <points>   cross match two point files
         skymask -h                        display help
         skymask -v                        display version and copyright

  Options:
         -c <config-file>
         -m <mask-file>           (default <region>.ply)
         -n <npoints>             random points to generate
         -b ramin,ramax,decmin,decmax
         -s <sweep-file-name>     sampling box from a sweep file name
         -k <points-file>         points to classify, - for stdin

With a region file, the mask is always written, to the -m file if given or
otherwise to the region file name with extension .ply.  Without a region
file, -m names an existing mask to read.

Random points are drawn from the whole sphere unless a box is given with -b
or -s.  A box only speeds up sampling; points outside the box are never
generated, so the box should enclose the mask.

A points file has RA and Dec in degrees, one point per line.  With -k and a
mask, each point is printed with true or false.  With -w, the sweep files
matching the glob whose boxes contain any of the points are listed.  With
-x, pairs of points from the two files closer than matchsep are listed.


Configuration file

skymask.config in the current directory, or the file given with -c, is a
text file with a simple format.  Empty lines and lines beginning with #
are ignored.  Other lines must contain a keyword or a setting.

Keywords:

   headings      print version and column headings (default)
   noheadings
   repeatable    use a fixed seed for random points
   random        seed from the clock (default)
   sexagesimal   print RA and Dec in sexagesimal
   degrees       print RA and Dec in decimal degrees (default)

Settings:

   precision=9        decimal digits of cap values in mask files, 6 to 17
   npoints=10000      random points to generate
   maxattempts=<n>    candidate points drawn before giving up
   timeout=<d>        time before giving up, as in 30s or 2m
   seed=<n>           seed for repeatable random points
   matchsep=10        cross match separation in arc minutes

Sampling a region of zero area can never succeed.  Skymask gives up with an
error after maxattempts candidates, 10,000,000 by default, or after timeout.


Region file

The region file is YAML with a list of polygons.  Each polygon has caps,
a rect, or a sweep.

  polygons:
    - caps:
        - {ra: 76, dec: 36, radius: 5}
        - {rah: 5, dec: 35, radius: 5, flip: true}
      area: 0.0047
    - rect: [75, 90, 30, 40]
    - sweep: sweep-350m005-360p005.fits

Cap centers are given with ra in degrees or rah in hours, dec in degrees,
and radius in degrees.  A rect is [ramin, ramax, decmin, decmax] in
degrees and a sweep is a Legacy Survey sweep file name encoding the same
four bounds.  Rects and sweeps have their area computed; for caps the
optional area is simply copied to the mask file.


Mask file format

  <n> polygons
  polygon <i> ( <c> caps, 1 weight, 0 pixel, <area> str):
   <x1> <y1> <z1> <d1> <x2> <y2> <z2> <d2> ...

Each cap is four numbers, a unit vector x, y, z of the cap axis and
d = 1 - cos(radius).  Negative d denotes the complement of the cap.


Algorithm outline

A point is inside a cap with d >= 0 if the dot product of the point with the
cap axis is at least 1-d, and inside a cap with d < 0 if the dot product is
less than 1+d.  A point is inside a polygon if it is inside all of its caps
and inside the mask if it is inside any polygon.

Random points are generated by drawing RA uniformly and Dec as
asin(1 - 2u), or within a box as asin interpolated between sin(decmin)
and sin(decmax), which is uniform per unit solid angle.  Candidates outside
the mask are rejected.

-------------
Public domain.
*/
package main
